package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClothingType enumerates the wardrobe categories an item can belong to.
// The string values are what clients send and what the `type` column stores.
type ClothingType string

const (
	ClothingTypeTop       ClothingType = "top"
	ClothingTypeBottom    ClothingType = "bottom"
	ClothingTypeShoes     ClothingType = "shoes"
	ClothingTypeAccessory ClothingType = "accessory"
	ClothingTypeDress     ClothingType = "dress"
	ClothingTypeOuterwear ClothingType = "outerwear"
)

// ParseClothingType validates a client-supplied type string. The comparison
// is case-insensitive on purpose so "TOP" binds to "top".
func ParseClothingType(s string) (ClothingType, bool) {
	t := ClothingType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ClothingTypeTop, ClothingTypeBottom, ClothingTypeShoes,
		ClothingTypeAccessory, ClothingTypeDress, ClothingTypeOuterwear:
		return t, true
	}
	return "", false
}

// ClothingItem mirrors the `clothing_items` table. Image columns hold the
// externally servable URLs; storage operations translate them back to
// object-store refs when blobs need to be deleted.
//
// Fields:
//
//	ID               - primary key identifier.
//	Name             - display name, searchable.
//	Type             - wardrobe category (ClothingType).
//	OriginalImageURL - servable URL of the uploaded photo.
//	ModifiedImageURL - servable URL of the background-removed cutout (nullable).
//	Color            - optional dominant color label.
//	UserID           - owning user; every item belongs to exactly one user.
//	CreatedAt        - creation timestamp.
type ClothingItem struct {
	ID               uuid.UUID    // clothing_items.id
	Name             string       // clothing_items.name
	Type             ClothingType // clothing_items.type
	OriginalImageURL string       // clothing_items.original_image_url
	ModifiedImageURL *string      // clothing_items.modified_image_url (nullable)
	Color            *string      // clothing_items.color (nullable)
	UserID           uuid.UUID    // clothing_items.user_id
	CreatedAt        time.Time    // clothing_items.created_at
}
