package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
)

func TestMigrate(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:migrate?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(gdb))
	for _, m := range []any{&models.User{}, &models.ProductDraft{}, &models.Product{}, &models.ProductVariant{}} {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
	assert.True(t, gdb.Migrator().HasIndex(&models.ProductDraft{}, "ux_product_drafts_seller_key"))
}
