// internal/models/category.go
package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Image       string `json:"image" gorm:"size:500;not null"`
	Color       string `json:"color" gorm:"size:7;not null"`
	Featured    bool   `json:"featured" gorm:"default:false;index"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display name into a URL slug.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if err := c.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if c.Slug == "" && c.Name != "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}
