package model

import (
	"time"

	"github.com/google/uuid"
)

// Outfit mirrors the `outfits` table. An outfit is a composed look: one
// rendered image plus a set of placement rows referencing the user's
// clothing items. Tags are stored JSON-encoded in a text column and feed
// the array-attribute search path.
type Outfit struct {
	ID             uuid.UUID // outfits.id
	OutfitImageURL string    // outfits.outfit_image_url
	Tags           []string  // outfits.tags (JSON-encoded)
	UserID         uuid.UUID // outfits.user_id
	CreatedAt      time.Time // outfits.created_at
}

// OutfitClothingItem mirrors the `outfit_clothing_items` join table. Each
// row places one clothing item on the outfit canvas with normalized
// percentage coordinates and a stacking index. Rows are wholly owned by the
// outfit: updates replace the full set and deletes cascade.
//
// Fields:
//
//	ID               - primary key identifier.
//	OutfitID         - owning outfit.
//	ClothingItemID   - referenced clothing item.
//	PositionXPercent - left edge as a percentage of canvas width.
//	PositionYPercent - top edge as a percentage of canvas height.
//	WidthPercent     - rendered width as a percentage of canvas width.
//	HeightPercent    - rendered height as a percentage of canvas height.
//	ZIndex           - stacking order, higher draws on top.
//	CreatedAt        - creation timestamp.
//	UpdatedAt        - last update timestamp.
type OutfitClothingItem struct {
	ID               uuid.UUID // outfit_clothing_items.id
	OutfitID         uuid.UUID // outfit_clothing_items.outfit_id
	ClothingItemID   uuid.UUID // outfit_clothing_items.clothing_item_id
	PositionXPercent float64   // outfit_clothing_items.position_x_percent
	PositionYPercent float64   // outfit_clothing_items.position_y_percent
	WidthPercent     float64   // outfit_clothing_items.width_percent
	HeightPercent    float64   // outfit_clothing_items.height_percent
	ZIndex           int       // outfit_clothing_items.z_index
	CreatedAt        time.Time // outfit_clothing_items.created_at
	UpdatedAt        time.Time // outfit_clothing_items.updated_at

	// ModifiedImageURL is joined from the referenced clothing item when an
	// outfit is fetched; it is not a column of this table.
	ModifiedImageURL *string
}
