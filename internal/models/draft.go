package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductDraft is one wizard step snapshot of a seller, stored under the
// storefront's storage key (productForm, productDescriptionForm, ...).
type ProductDraft struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_product_drafts_seller_key" json:"seller_id"`
	StorageKey string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_product_drafts_seller_key" json:"storage_key"`
	Fields     datatypes.JSON `json:"fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *ProductDraft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
