package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/queue"
	"github.com/fittedco/wardrobe-service/internal/repository"
	"github.com/fittedco/wardrobe-service/internal/storage"
	"github.com/fittedco/wardrobe-service/internal/utils"
)

// maxImageSize is the per-image limit enforced on uploads. The storage
// gateway has its own, much larger transport cap.
const maxImageSize = 10 << 20 // 10 MiB

// allowedImageSet pairs the MIME types an endpoint accepts with the label
// used in rejection messages. Types are detected from content, never
// trusted from the request.
type allowedImageSet struct {
	types []string
	label string
}

var clothingItemImageTypes = allowedImageSet{
	types: []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
	label: "JPEG, PNG, WebP",
}

// MediaGateway is the slice of the storage layer the wardrobe services use.
type MediaGateway interface {
	Put(ctx context.Context, data []byte, contentType, key string) (string, error)
	Delete(ctx context.Context, ref string) error
	Cleanup(ctx context.Context, refs ...string)
	ToPublicURL(ref string) string
}

// ClothingItemStore is the repository surface the clothing item service
// depends on.
type ClothingItemStore interface {
	Create(ctx context.Context, item *model.ClothingItem) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (model.ClothingItem, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error
	Search(ctx context.Context, filter *repository.Filter, search *repository.Search, sort *repository.Sort, page, maxSize int, userID uuid.UUID) ([]model.ClothingItem, int64, error)
}

// ImageUpload is one uploaded file, already read into memory. The handler
// owns reading multipart parts; services only see bytes plus the original
// file name (for its extension).
type ImageUpload struct {
	FileName string
	Data     []byte
}

// ClothingItemService implements the clothing item operations: create with
// dual image upload, fetch, search and delete.
type ClothingItemService struct {
	items  ClothingItemStore
	media  MediaGateway
	events *EventPublisher
}

func NewClothingItemService(items ClothingItemStore, media MediaGateway, events *EventPublisher) *ClothingItemService {
	return &ClothingItemService{items: items, media: media, events: events}
}

// SaveClothingItemParams carries everything needed to create an item. Both
// images are required: the original photo and the background-removed cutout.
type SaveClothingItemParams struct {
	Name          string
	Type          model.ClothingType
	Color         *string
	OriginalImage ImageUpload
	ModifiedImage ImageUpload
	UserID        uuid.UUID
}

// SaveClothingItem validates both images, uploads them under a fresh item
// id, persists the row and publishes a creation event. If anything fails
// after an upload succeeded, the uploaded blobs are cleaned up best-effort
// and the original error is returned untouched.
func (s *ClothingItemService) SaveClothingItem(ctx context.Context, p SaveClothingItemParams) (model.ClothingItem, error) {
	origType, err := validateImage(p.OriginalImage, clothingItemImageTypes)
	if err != nil {
		return model.ClothingItem{}, err
	}
	modType, err := validateImage(p.ModifiedImage, clothingItemImageTypes)
	if err != nil {
		return model.ClothingItem{}, err
	}

	itemID := uuid.New()

	origKey := utils.ClothingItemFileKey(p.UserID.String(), itemID.String(),
		utils.ImageRoleOriginal, utils.FileExtension(p.OriginalImage.FileName))
	origRef, err := s.media.Put(ctx, p.OriginalImage.Data, origType, origKey)
	if err != nil {
		return model.ClothingItem{}, mapUploadErr(err)
	}

	modKey := utils.ClothingItemFileKey(p.UserID.String(), itemID.String(),
		utils.ImageRoleModified, utils.FileExtension(p.ModifiedImage.FileName))
	modRef, err := s.media.Put(ctx, p.ModifiedImage.Data, modType, modKey)
	if err != nil {
		s.media.Cleanup(ctx, origRef)
		return model.ClothingItem{}, mapUploadErr(err)
	}

	modifiedURL := s.media.ToPublicURL(modRef)
	item := model.ClothingItem{
		ID:               itemID,
		Name:             p.Name,
		Type:             p.Type,
		OriginalImageURL: s.media.ToPublicURL(origRef),
		ModifiedImageURL: &modifiedURL,
		Color:            p.Color,
		UserID:           p.UserID,
	}
	if err := s.items.Create(ctx, &item); err != nil {
		s.media.Cleanup(ctx, origRef, modRef)
		return model.ClothingItem{}, internalErr("failed to save clothing item", err)
	}
	log.Printf("clothing-items: created %s for user %s", item.ID, p.UserID)

	s.publishItemEvent(ctx, queue.QueueClothingItemCreated, item)
	return item, nil
}

// GetClothingItem fetches an owned item. Foreign items are reported as
// missing rather than forbidden.
func (s *ClothingItemService) GetClothingItem(ctx context.Context, id, userID uuid.UUID) (model.ClothingItem, error) {
	item, err := s.items.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ClothingItem{}, notFoundErrf("Clothing item with id: %s not found.", id)
		}
		return model.ClothingItem{}, internalErr("failed to load clothing item", err)
	}
	return item, nil
}

// SearchResult is one page of matches plus the cursorless paging metadata
// clients use to drive infinite scrolling.
type SearchResult[T any] struct {
	Items      []T
	TotalCount int64
	HasNext    bool
}

// SearchClothingItems runs the dynamic filter/search/sort query scoped to
// the user's wardrobe.
func (s *ClothingItemService) SearchClothingItems(ctx context.Context, filter *repository.Filter, search *repository.Search, sort *repository.Sort, page, maxSize int, userID uuid.UUID) (SearchResult[model.ClothingItem], error) {
	items, total, err := s.items.Search(ctx, filter, search, sort, page, maxSize, userID)
	if err != nil {
		return SearchResult[model.ClothingItem]{}, internalErr("failed to search clothing items", err)
	}
	limit, offset := repository.Pagination(page, maxSize)
	return SearchResult[model.ClothingItem]{
		Items:      items,
		TotalCount: total,
		HasNext:    int64(offset+limit) < total,
	}, nil
}

// DeleteClothingItem removes the row, then the image blobs best-effort. The
// row is the source of truth; an orphaned blob is recoverable noise while a
// row pointing at deleted media is a broken wardrobe.
func (s *ClothingItemService) DeleteClothingItem(ctx context.Context, id, userID uuid.UUID) error {
	item, err := s.items.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErrf("Clothing item with id: %s not found.", id)
		}
		return internalErr("failed to load clothing item", err)
	}
	if err := s.items.DeleteByIDAndUser(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErrf("Clothing item with id: %s not found.", id)
		}
		return internalErr("failed to delete clothing item", err)
	}

	refs := []string{item.OriginalImageURL}
	if item.ModifiedImageURL != nil {
		refs = append(refs, *item.ModifiedImageURL)
	}
	s.media.Cleanup(ctx, refs...)
	log.Printf("clothing-items: deleted %s for user %s", id, userID)

	s.publishItemEvent(ctx, queue.QueueClothingItemDeleted, item)
	return nil
}

func (s *ClothingItemService) publishItemEvent(ctx context.Context, queueName string, item model.ClothingItem) {
	s.events.Publish(ctx, queueName, queue.ClothingItemEvent{
		ClothingItemID: item.ID.String(),
		UserID:         item.UserID.String(),
		Name:           item.Name,
		Type:           string(item.Type),
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// validateImage checks presence, size and content-sniffed MIME type, and
// returns the detected type for the upload.
func validateImage(img ImageUpload, allowed allowedImageSet) (string, error) {
	if len(img.Data) == 0 {
		return "", &ValidationError{Message: "File input is missing or empty."}
	}
	if len(img.Data) > maxImageSize {
		return "", &ValidationError{Message: "File size exceeds maximum allowed size of 10MB"}
	}
	detected := mimetype.Detect(img.Data).String()
	for _, t := range allowed.types {
		if detected == t {
			return detected, nil
		}
	}
	return "", validationErrf("Invalid file type: %s. Allowed types are: %s", detected, allowed.label)
}

// mapUploadErr translates storage-layer failures into the domain taxonomy:
// local validation problems surface as 400s, backend failures as 500s.
func mapUploadErr(err error) error {
	var ve *storage.UploadValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Message: ve.Reason}
	}
	return internalErr("image upload failed", err)
}
