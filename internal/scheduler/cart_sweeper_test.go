package scheduler

import (
	"testing"
	"time"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSweeper_Sweep(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{Email: "sweep@example.com", PasswordHash: "hash", Name: "Sweep Tester", Role: model.RoleUser}
	testDB.Create(user)
	product := &model.Product{Name: "Vanilla Bean", Price: 100, Category: model.CategoryClassic, StockQuantity: 10}
	testDB.Create(product)

	stale := &model.CartItem{UserID: user.ID, ItemKey: "stale-key", ProductID: product.ID, Quantity: 1, UnitPrice: 100}
	testDB.Create(stale)
	testDB.Model(stale).UpdateColumn("updated_at", time.Now().Add(-30*24*time.Hour))

	fresh := &model.CartItem{UserID: user.ID, ItemKey: "fresh-key", ProductID: product.ID, Quantity: 1, UnitPrice: 100}
	testDB.Create(fresh)

	cartRepo := repository.NewCartRepository(testDB)
	sweeper := NewCartSweeper(cartRepo, "0 3 * * *", 14*24*time.Hour)
	sweeper.Sweep()

	var remaining []model.CartItem
	require.NoError(t, testDB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh-key", remaining[0].ItemKey)
}
