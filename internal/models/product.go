package models

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Slug             string           `gorm:"uniqueIndex" json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	Description      string           `json:"description"`
	BasePrice        int64            `json:"base_price"`
	HeroImage        string           `json:"hero_image"`
	IsActive         bool             `json:"is_active"`
	RatingAverage    float64          `json:"rating_average"`
	RatingCount      int              `json:"rating_count"`
	BrandID          *uuid.UUID       `gorm:"type:uuid;index" json:"brand_id"`
	Brand            *Brand           `json:"brand,omitempty"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category         *Category        `json:"category,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
	Media            []ProductMedia   `json:"media,omitempty"`
}

// ProductVariant is a purchasable SKU carrying its own price and stock.
type ProductVariant struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU           string    `json:"sku"`
	Label         string    `json:"label"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"original_price"`
	Stock         int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
}

type ProductMedia struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int       `json:"display_order"`
}
