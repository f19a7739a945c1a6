package models

import "cafe/src/types"

type Category struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `json:"name,omitempty"`
	Slug        string `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Items []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`

	types.Timestamps
}

// MenuItem is a sellable catalog entry. Price is stored in paise; money
// never passes through a float anywhere in this codebase.
type MenuItem struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `json:"name,omitempty"`
	Slug        string `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`
	ImageURL    string `json:"image_url,omitempty"`
	CategoryID  uint   `json:"category_id,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`

	types.Timestamps
}
