package models

import "github.com/google/uuid"

type Review struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reviews_product_user" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reviews_product_user" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
}

type Comment struct {
	BaseModel
	ProductID  uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	UserID     *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	AuthorName string     `json:"author_name"`
	Content    string     `json:"content"`
	ParentID   *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Replies    []Comment  `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

type WishlistItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}
