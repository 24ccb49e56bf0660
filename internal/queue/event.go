// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names for wardrobe domain events.
const (
	QueueClothingItemCreated = "wardrobe.clothing_item.created"
	QueueClothingItemDeleted = "wardrobe.clothing_item.deleted"
	QueueOutfitCreated       = "wardrobe.outfit.created"
	QueueOutfitUpdated       = "wardrobe.outfit.updated"
	QueueOutfitDeleted       = "wardrobe.outfit.deleted"
)

// ClothingItemEvent is published when a clothing item is created or
// deleted. It carries enough for downstream consumers (analytics, cleanup
// audits) without querying the primary database.
type ClothingItemEvent struct {
	ClothingItemID string `json:"clothing_item_id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	OccurredAt     string `json:"occurred_at"`
}

// OutfitEvent is published when an outfit is created, updated or deleted.
type OutfitEvent struct {
	OutfitID      string   `json:"outfit_id"`
	UserID        string   `json:"user_id"`
	ClothingItems []string `json:"clothing_items"`
	Tags          []string `json:"tags"`
	OccurredAt    string   `json:"occurred_at"`
}
