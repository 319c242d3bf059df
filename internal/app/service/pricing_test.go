package service

import (
	"testing"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func TestPriceItem(t *testing.T) {
	product := &model.Product{Price: 100}
	chips := model.Topping{Price: 15}
	almonds := model.Topping{Price: 25}

	tests := []struct {
		name          string
		customization model.Customization
		toppings      []model.Topping
		expected      float64
	}{
		{
			name:          "small cone no toppings",
			customization: model.Customization{Size: model.SizeSmall, Container: model.ContainerCone},
			expected:      100,
		},
		{
			name:          "medium with one topping",
			customization: model.Customization{Size: model.SizeMedium, Container: model.ContainerCup},
			toppings:      []model.Topping{chips},
			expected:      135,
		},
		{
			name:          "large with two toppings",
			customization: model.Customization{Size: model.SizeLarge, Container: model.ContainerCone},
			toppings:      []model.Topping{chips, almonds},
			expected:      180,
		},
		{
			name:          "unknown size carries no surcharge",
			customization: model.Customization{Size: model.ScoopSize("giant")},
			expected:      100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PriceItem(product, tt.customization, tt.toppings))
		})
	}
}
