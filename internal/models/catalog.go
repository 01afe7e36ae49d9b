package models

type Category struct {
	BaseModel
	Name        string    `json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Products    []Product `json:"products,omitempty"`
}

type Brand struct {
	BaseModel
	Name        string    `json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	Country     string    `json:"country"`
	Image       string    `json:"image"`
	Products    []Product `json:"products,omitempty"`
}
