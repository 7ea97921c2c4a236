package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// prices go out as JSON numbers (250, not "250")
	decimal.MarshalJSONWithoutQuotes = true
}

const ProductStatusPublished = "published"

// Product is the record written once the seller finishes the wizard.
// IDs are assigned by the submission flow (max existing id + 1).
type Product struct {
	ID       uint            `gorm:"primaryKey;autoIncrement:false" json:"id"`
	SellerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Name     string          `gorm:"type:varchar(200);not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Stock    int             `gorm:"not null;default:0" json:"stock"`
	Category string          `gorm:"type:varchar(120);index" json:"category"`
	SKU      string          `gorm:"type:varchar(64)" json:"sku"`
	CoverURL string          `gorm:"type:text" json:"cover_url"`
	Status   string          `gorm:"type:varchar(20);not null;default:'published'" json:"status"`

	// verbatim copy of the three step drafts, for the detail view
	Full datatypes.JSON `json:"_full"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductVariant struct {
	ID                uint   `gorm:"primaryKey" json:"-"`
	ProductID         uint   `gorm:"index;not null" json:"-"`
	Position          int    `gorm:"not null;default:0" json:"-"`
	SKU               string `gorm:"type:varchar(64)" json:"sku"`
	Color             string `gorm:"type:varchar(60)" json:"color"`
	ColorHex          string `gorm:"type:varchar(9)" json:"color_hex,omitempty"`
	Size              string `gorm:"type:varchar(30)" json:"size"`
	Stock             int    `gorm:"not null;default:0" json:"stock"`
	LowStockThreshold int    `gorm:"not null;default:0" json:"low_stock_threshold"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
