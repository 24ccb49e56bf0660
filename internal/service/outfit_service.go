package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/queue"
	"github.com/fittedco/wardrobe-service/internal/repository"
	"github.com/fittedco/wardrobe-service/internal/utils"
)

// Outfit composites accept more source formats than clothing items since
// they are rendered client-side rather than fed to the cutout pipeline.
var outfitImageTypes = allowedImageSet{
	types: []string{
		"image/jpeg", "image/jpg", "image/png", "image/webp",
		"image/bmp", "image/gif", "image/tiff", "image/avif",
	},
	label: "JPEG, PNG, WebP, BMP, GIF, TIFF, AVIF",
}

// OutfitStore is the repository surface the outfit service depends on.
type OutfitStore interface {
	CreateWithPlacements(ctx context.Context, outfit *model.Outfit, placements []model.OutfitClothingItem) error
	ReplaceWithPlacements(ctx context.Context, outfit *model.Outfit, placements []model.OutfitClothingItem) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (model.Outfit, error)
	PlacementsWithItems(ctx context.Context, outfitID uuid.UUID) ([]model.OutfitClothingItem, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error
	Search(ctx context.Context, filter *repository.Filter, search *repository.Search, sort *repository.Sort, page, maxSize int, userID uuid.UUID) ([]model.Outfit, int64, error)
}

// ClothingItemOwnership is the slice of the clothing item repository used to
// validate that placements only reference the caller's own items.
type ClothingItemOwnership interface {
	CountOwned(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int, error)
}

// OutfitService implements outfit CRUD: composite image upload, placement
// management and search by tags.
type OutfitService struct {
	outfits OutfitStore
	items   ClothingItemOwnership
	media   MediaGateway
	events  *EventPublisher
}

func NewOutfitService(outfits OutfitStore, items ClothingItemOwnership, media MediaGateway, events *EventPublisher) *OutfitService {
	return &OutfitService{outfits: outfits, items: items, media: media, events: events}
}

// PlacementParams is one clothing item placed on the outfit canvas, in
// percent coordinates relative to the canvas size.
type PlacementParams struct {
	ClothingItemID   uuid.UUID
	PositionXPercent float64
	PositionYPercent float64
	WidthPercent     float64
	HeightPercent    float64
	ZIndex           int
}

// CreateOutfitParams carries everything needed to create an outfit.
type CreateOutfitParams struct {
	Image      ImageUpload
	Placements []PlacementParams
	Tags       []string
	UserID     uuid.UUID
}

// UpdateOutfitParams is a create plus the id of the outfit being replaced.
type UpdateOutfitParams struct {
	CreateOutfitParams
	OutfitID uuid.UUID
}

// OutfitDetail is an outfit with its placement rows, each joined with the
// referenced item's cutout image.
type OutfitDetail struct {
	Outfit     model.Outfit
	Placements []model.OutfitClothingItem
}

// SaveOutfit validates the composite image and placement ownership, uploads
// the image under a fresh outfit id and persists the outfit with its
// placements atomically. Uploaded blobs are cleaned up if persistence fails.
func (s *OutfitService) SaveOutfit(ctx context.Context, p CreateOutfitParams) (OutfitDetail, error) {
	imgType, err := validateImage(p.Image, outfitImageTypes)
	if err != nil {
		return OutfitDetail{}, err
	}
	if err := s.checkOwnership(ctx, p.Placements, p.UserID); err != nil {
		return OutfitDetail{}, err
	}

	outfitID := uuid.New()
	key := utils.OutfitFileKey(p.UserID.String(), outfitID.String(), utils.FileExtension(p.Image.FileName))
	ref, err := s.media.Put(ctx, p.Image.Data, imgType, key)
	if err != nil {
		return OutfitDetail{}, mapUploadErr(err)
	}

	outfit := model.Outfit{
		ID:             outfitID,
		OutfitImageURL: s.media.ToPublicURL(ref),
		Tags:           p.Tags,
		UserID:         p.UserID,
	}
	placements := toPlacementModels(p.Placements)
	if err := s.outfits.CreateWithPlacements(ctx, &outfit, placements); err != nil {
		s.media.Cleanup(ctx, ref)
		return OutfitDetail{}, internalErr("failed to save outfit", err)
	}
	log.Printf("outfits: created %s for user %s", outfit.ID, p.UserID)

	detail, err := s.loadDetail(ctx, outfit)
	if err != nil {
		return OutfitDetail{}, err
	}
	s.publishOutfitEvent(ctx, queue.QueueOutfitCreated, detail)
	return detail, nil
}

// GetOutfit fetches an owned outfit with its placements. Foreign outfits
// are reported as missing rather than forbidden.
func (s *OutfitService) GetOutfit(ctx context.Context, id, userID uuid.UUID) (OutfitDetail, error) {
	outfit, err := s.outfits.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OutfitDetail{}, notFoundErrf("Outfit with id: %s not found.", id)
		}
		return OutfitDetail{}, internalErr("failed to load outfit", err)
	}
	return s.loadDetail(ctx, outfit)
}

// UpdateOutfit replaces an outfit's image, tags and placement set. The new
// image is uploaded first; the old blob is deleted best-effort only after
// the replacement persisted, so a failed update never strands the outfit
// without an image.
func (s *OutfitService) UpdateOutfit(ctx context.Context, p UpdateOutfitParams) (OutfitDetail, error) {
	imgType, err := validateImage(p.Image, outfitImageTypes)
	if err != nil {
		return OutfitDetail{}, err
	}
	if err := s.checkOwnership(ctx, p.Placements, p.UserID); err != nil {
		return OutfitDetail{}, err
	}

	existing, err := s.outfits.GetByIDAndUser(ctx, p.OutfitID, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OutfitDetail{}, notFoundErrf("Outfit with id: %s not found.", p.OutfitID)
		}
		return OutfitDetail{}, internalErr("failed to load outfit", err)
	}

	key := utils.OutfitFileKey(p.UserID.String(), p.OutfitID.String(), utils.FileExtension(p.Image.FileName))
	ref, err := s.media.Put(ctx, p.Image.Data, imgType, key)
	if err != nil {
		return OutfitDetail{}, mapUploadErr(err)
	}

	outfit := model.Outfit{
		ID:             p.OutfitID,
		OutfitImageURL: s.media.ToPublicURL(ref),
		Tags:           p.Tags,
		UserID:         p.UserID,
		CreatedAt:      existing.CreatedAt,
	}
	placements := toPlacementModels(p.Placements)
	if err := s.outfits.ReplaceWithPlacements(ctx, &outfit, placements); err != nil {
		s.media.Cleanup(ctx, ref)
		if errors.Is(err, repository.ErrNotFound) {
			return OutfitDetail{}, notFoundErrf("Outfit with id: %s not found.", p.OutfitID)
		}
		return OutfitDetail{}, internalErr("failed to update outfit", err)
	}
	s.media.Cleanup(ctx, existing.OutfitImageURL)
	log.Printf("outfits: updated %s for user %s", p.OutfitID, p.UserID)

	detail, err := s.loadDetail(ctx, outfit)
	if err != nil {
		return OutfitDetail{}, err
	}
	s.publishOutfitEvent(ctx, queue.QueueOutfitUpdated, detail)
	return detail, nil
}

// SearchOutfits runs the dynamic filter/search/sort query scoped to the
// user's outfits.
func (s *OutfitService) SearchOutfits(ctx context.Context, filter *repository.Filter, search *repository.Search, sort *repository.Sort, page, maxSize int, userID uuid.UUID) (SearchResult[model.Outfit], error) {
	outfits, total, err := s.outfits.Search(ctx, filter, search, sort, page, maxSize, userID)
	if err != nil {
		return SearchResult[model.Outfit]{}, internalErr("failed to search outfits", err)
	}
	limit, offset := repository.Pagination(page, maxSize)
	return SearchResult[model.Outfit]{
		Items:      outfits,
		TotalCount: total,
		HasNext:    int64(offset+limit) < total,
	}, nil
}

// DeleteOutfit removes the outfit row (placements cascade) and then the
// composite image best-effort.
func (s *OutfitService) DeleteOutfit(ctx context.Context, id, userID uuid.UUID) error {
	outfit, err := s.outfits.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErrf("Outfit with id: %s not found.", id)
		}
		return internalErr("failed to load outfit", err)
	}
	if err := s.outfits.DeleteByIDAndUser(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErrf("Outfit with id: %s not found.", id)
		}
		return internalErr("failed to delete outfit", err)
	}
	s.media.Cleanup(ctx, outfit.OutfitImageURL)
	log.Printf("outfits: deleted %s for user %s", id, userID)

	s.publishOutfitEvent(ctx, queue.QueueOutfitDeleted, OutfitDetail{Outfit: outfit})
	return nil
}

// checkOwnership rejects placements referencing items the user does not
// own. A single count query covers both the foreign and the nonexistent
// case.
func (s *OutfitService) checkOwnership(ctx context.Context, placements []PlacementParams, userID uuid.UUID) error {
	if len(placements) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(placements))
	ids := make([]uuid.UUID, 0, len(placements))
	for _, p := range placements {
		if _, ok := seen[p.ClothingItemID]; ok {
			continue
		}
		seen[p.ClothingItemID] = struct{}{}
		ids = append(ids, p.ClothingItemID)
	}
	n, err := s.items.CountOwned(ctx, ids, userID)
	if err != nil {
		return internalErr("failed to verify clothing item ownership", err)
	}
	if n != len(ids) {
		return &ValidationError{Message: "One or more clothing items do not belong to the user or do not exist"}
	}
	return nil
}

func (s *OutfitService) loadDetail(ctx context.Context, outfit model.Outfit) (OutfitDetail, error) {
	placements, err := s.outfits.PlacementsWithItems(ctx, outfit.ID)
	if err != nil {
		return OutfitDetail{}, internalErr("failed to load outfit placements", err)
	}
	return OutfitDetail{Outfit: outfit, Placements: placements}, nil
}

func (s *OutfitService) publishOutfitEvent(ctx context.Context, queueName string, detail OutfitDetail) {
	itemIDs := make([]string, 0, len(detail.Placements))
	for _, p := range detail.Placements {
		itemIDs = append(itemIDs, p.ClothingItemID.String())
	}
	s.events.Publish(ctx, queueName, queue.OutfitEvent{
		OutfitID:      detail.Outfit.ID.String(),
		UserID:        detail.Outfit.UserID.String(),
		ClothingItems: itemIDs,
		Tags:          detail.Outfit.Tags,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

func toPlacementModels(params []PlacementParams) []model.OutfitClothingItem {
	out := make([]model.OutfitClothingItem, len(params))
	for i, p := range params {
		out[i] = model.OutfitClothingItem{
			ClothingItemID:   p.ClothingItemID,
			PositionXPercent: p.PositionXPercent,
			PositionYPercent: p.PositionYPercent,
			WidthPercent:     p.WidthPercent,
			HeightPercent:    p.HeightPercent,
			ZIndex:           p.ZIndex,
		}
	}
	return out
}
