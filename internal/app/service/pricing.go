package service

import "github.com/creamloft/creamloft-backend/internal/app/model"

// Size surcharges added on top of the product base price.
var sizeSurcharges = map[model.ScoopSize]float64{
	model.SizeSmall:  0,
	model.SizeMedium: 20,
	model.SizeLarge:  40,
}

// PriceItem computes the unit price for a customized item:
// product base price plus size surcharge plus the sum of topping prices.
// Unknown sizes carry no surcharge.
func PriceItem(product *model.Product, customization model.Customization, toppings []model.Topping) float64 {
	price := product.Price
	price += sizeSurcharges[customization.Size]
	for _, topping := range toppings {
		price += topping.Price
	}
	return price
}
