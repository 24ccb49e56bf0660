package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/repository"
)

// ----- fakes -----

type fakeOutfitStore struct {
	outfits     map[uuid.UUID]model.Outfit
	placements  map[uuid.UUID][]model.OutfitClothingItem
	failReplace bool
}

func newFakeOutfitStore() *fakeOutfitStore {
	return &fakeOutfitStore{
		outfits:    map[uuid.UUID]model.Outfit{},
		placements: map[uuid.UUID][]model.OutfitClothingItem{},
	}
}

func (f *fakeOutfitStore) CreateWithPlacements(_ context.Context, outfit *model.Outfit, placements []model.OutfitClothingItem) error {
	f.outfits[outfit.ID] = *outfit
	f.storePlacements(outfit.ID, placements)
	return nil
}

func (f *fakeOutfitStore) ReplaceWithPlacements(_ context.Context, outfit *model.Outfit, placements []model.OutfitClothingItem) error {
	if f.failReplace {
		return errors.New("db write failed")
	}
	existing, ok := f.outfits[outfit.ID]
	if !ok || existing.UserID != outfit.UserID {
		return repository.ErrNotFound
	}
	f.outfits[outfit.ID] = *outfit
	f.storePlacements(outfit.ID, placements)
	return nil
}

func (f *fakeOutfitStore) storePlacements(outfitID uuid.UUID, placements []model.OutfitClothingItem) {
	stored := make([]model.OutfitClothingItem, len(placements))
	for i, p := range placements {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.OutfitID = outfitID
		stored[i] = p
	}
	f.placements[outfitID] = stored
}

func (f *fakeOutfitStore) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (model.Outfit, error) {
	o, ok := f.outfits[id]
	if !ok || o.UserID != userID {
		return model.Outfit{}, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOutfitStore) PlacementsWithItems(_ context.Context, outfitID uuid.UUID) ([]model.OutfitClothingItem, error) {
	return f.placements[outfitID], nil
}

func (f *fakeOutfitStore) DeleteByIDAndUser(_ context.Context, id, userID uuid.UUID) error {
	o, ok := f.outfits[id]
	if !ok || o.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.outfits, id)
	delete(f.placements, id)
	return nil
}

func (f *fakeOutfitStore) Search(_ context.Context, _ *repository.Filter, _ *repository.Search, _ *repository.Sort, page, maxSize int, userID uuid.UUID) ([]model.Outfit, int64, error) {
	var owned []model.Outfit
	for _, o := range f.outfits {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	limit, offset := repository.Pagination(page, maxSize)
	total := int64(len(owned))
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

// outfitFixture wires an outfit service over fakes with nOwned items
// already in the caller's wardrobe.
func outfitFixture(t *testing.T, nOwned int) (*OutfitService, *fakeOutfitStore, *fakeItemStore, *fakeMedia, uuid.UUID, []uuid.UUID) {
	t.Helper()
	media := newFakeMedia()
	items := newFakeItemStore()
	outfits := newFakeOutfitStore()
	svc := NewOutfitService(outfits, items, media, nil)
	userID := uuid.New()

	ids := make([]uuid.UUID, nOwned)
	for i := range ids {
		id := uuid.New()
		url := "s3://test-bucket/" + id.String() + "_modified.png"
		items.items[id] = model.ClothingItem{
			ID: id, Name: "fixture", Type: model.ClothingTypeTop,
			OriginalImageURL: url, ModifiedImageURL: &url, UserID: userID,
		}
		ids[i] = id
	}
	return svc, outfits, items, media, userID, ids
}

func validOutfitParams(userID uuid.UUID, itemIDs []uuid.UUID) CreateOutfitParams {
	placements := make([]PlacementParams, len(itemIDs))
	for i, id := range itemIDs {
		placements[i] = PlacementParams{
			ClothingItemID:   id,
			PositionXPercent: 10 * float64(i),
			PositionYPercent: 20,
			WidthPercent:     30,
			HeightPercent:    40,
			ZIndex:           i,
		}
	}
	return CreateOutfitParams{
		Image:      ImageUpload{FileName: "outfit.png", Data: pngBytes},
		Placements: placements,
		Tags:       []string{"summer", "casual"},
		UserID:     userID,
	}
}

// ----- tests -----

func TestSaveOutfit(t *testing.T) {
	svc, outfits, _, media, userID, itemIDs := outfitFixture(t, 2)

	detail, err := svc.SaveOutfit(context.Background(), validOutfitParams(userID, itemIDs))
	if err != nil {
		t.Fatalf("SaveOutfit: %v", err)
	}
	if detail.Outfit.ID == uuid.Nil {
		t.Fatal("outfit has no id")
	}
	if len(detail.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(detail.Placements))
	}
	if !strings.Contains(detail.Outfit.OutfitImageURL, userID.String()+"/outfits/"+detail.Outfit.ID.String()+"/") {
		t.Fatalf("outfit image URL = %q", detail.Outfit.OutfitImageURL)
	}
	if len(media.puts) != 1 {
		t.Fatalf("uploads = %d, want 1", len(media.puts))
	}
	if _, ok := outfits.outfits[detail.Outfit.ID]; !ok {
		t.Fatal("outfit row not persisted")
	}
}

func TestSaveOutfitAcceptsWiderImageFormats(t *testing.T) {
	svc, _, _, _, userID, itemIDs := outfitFixture(t, 1)

	p := validOutfitParams(userID, itemIDs)
	p.Image = ImageUpload{FileName: "outfit.gif", Data: gifBytes}
	if _, err := svc.SaveOutfit(context.Background(), p); err != nil {
		t.Fatalf("gif outfit rejected: %v", err)
	}
}

func TestSaveOutfitRejectsForeignItems(t *testing.T) {
	svc, _, items, media, userID, itemIDs := outfitFixture(t, 1)

	// Second item exists but belongs to someone else.
	foreignID := uuid.New()
	items.items[foreignID] = model.ClothingItem{ID: foreignID, UserID: uuid.New()}

	p := validOutfitParams(userID, append(itemIDs, foreignID))
	_, err := svc.SaveOutfit(context.Background(), p)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if want := "One or more clothing items do not belong to the user or do not exist"; ve.Message != want {
		t.Fatalf("message = %q, want %q", ve.Message, want)
	}
	if len(media.puts) != 0 {
		t.Fatal("image uploaded despite rejected placements")
	}
}

func TestSaveOutfitRejectsNonexistentItems(t *testing.T) {
	svc, _, _, _, userID, itemIDs := outfitFixture(t, 1)

	p := validOutfitParams(userID, append(itemIDs, uuid.New()))
	_, err := svc.SaveOutfit(context.Background(), p)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestUpdateOutfitReplacesImageAndPlacements(t *testing.T) {
	svc, outfits, _, media, userID, itemIDs := outfitFixture(t, 3)
	ctx := context.Background()

	created, err := svc.SaveOutfit(ctx, validOutfitParams(userID, itemIDs[:2]))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	oldURL := created.Outfit.OutfitImageURL

	update := UpdateOutfitParams{
		CreateOutfitParams: validOutfitParams(userID, itemIDs[1:]),
		OutfitID:           created.Outfit.ID,
	}
	update.Tags = []string{"winter"}
	updated, err := svc.UpdateOutfit(ctx, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Outfit.OutfitImageURL == oldURL {
		t.Fatal("image URL unchanged after update")
	}
	var oldDeleted bool
	for _, ref := range media.deleted {
		if ref == oldURL {
			oldDeleted = true
		}
	}
	if !oldDeleted {
		t.Fatalf("old blob not deleted; deleted = %v", media.deleted)
	}
	if len(updated.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(updated.Placements))
	}
	if got := outfits.outfits[created.Outfit.ID].Tags; len(got) != 1 || got[0] != "winter" {
		t.Fatalf("tags = %v, want [winter]", got)
	}
}

func TestUpdateOutfitNotFound(t *testing.T) {
	svc, _, _, _, userID, itemIDs := outfitFixture(t, 1)

	_, err := svc.UpdateOutfit(context.Background(), UpdateOutfitParams{
		CreateOutfitParams: validOutfitParams(userID, itemIDs),
		OutfitID:           uuid.New(),
	})
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestUpdateOutfitCleansUpNewUploadOnPersistFailure(t *testing.T) {
	svc, outfits, _, media, userID, itemIDs := outfitFixture(t, 1)
	ctx := context.Background()

	created, err := svc.SaveOutfit(ctx, validOutfitParams(userID, itemIDs))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	outfits.failReplace = true

	_, err = svc.UpdateOutfit(ctx, UpdateOutfitParams{
		CreateOutfitParams: validOutfitParams(userID, itemIDs),
		OutfitID:           created.Outfit.ID,
	})
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InternalError", err)
	}
	if len(media.deleted) != 1 {
		t.Fatalf("deleted = %v, want only the new upload removed", media.deleted)
	}
	if media.deleted[0] == created.Outfit.OutfitImageURL {
		t.Fatal("old blob deleted although the update failed")
	}
}

func TestGetOutfitJoinsPlacements(t *testing.T) {
	svc, _, _, _, userID, itemIDs := outfitFixture(t, 2)
	ctx := context.Background()

	created, err := svc.SaveOutfit(ctx, validOutfitParams(userID, itemIDs))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	detail, err := svc.GetOutfit(ctx, created.Outfit.ID, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(detail.Placements))
	}

	_, err = svc.GetOutfit(ctx, created.Outfit.ID, uuid.New())
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("foreign get err = %v, want NotFoundError", err)
	}
}

func TestDeleteOutfit(t *testing.T) {
	svc, outfits, _, media, userID, itemIDs := outfitFixture(t, 1)
	ctx := context.Background()

	created, err := svc.SaveOutfit(ctx, validOutfitParams(userID, itemIDs))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.DeleteOutfit(ctx, created.Outfit.ID, userID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := outfits.outfits[created.Outfit.ID]; ok {
		t.Fatal("outfit row still present")
	}
	if len(media.deleted) != 1 || media.deleted[0] != created.Outfit.OutfitImageURL {
		t.Fatalf("deleted = %v, want the outfit image", media.deleted)
	}

	err = svc.DeleteOutfit(ctx, created.Outfit.ID, userID)
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("second delete err = %v, want NotFoundError", err)
	}
}

func TestSearchOutfitsScopedToOwner(t *testing.T) {
	svc, _, items, _, userID, itemIDs := outfitFixture(t, 1)
	ctx := context.Background()

	otherUser := uuid.New()
	otherItem := uuid.New()
	url := "s3://test-bucket/other_modified.png"
	items.items[otherItem] = model.ClothingItem{
		ID: otherItem, UserID: otherUser, ModifiedImageURL: &url,
	}

	if _, err := svc.SaveOutfit(ctx, validOutfitParams(userID, itemIDs)); err != nil {
		t.Fatalf("save mine: %v", err)
	}
	if _, err := svc.SaveOutfit(ctx, validOutfitParams(otherUser, []uuid.UUID{otherItem})); err != nil {
		t.Fatalf("save theirs: %v", err)
	}

	res, err := svc.SearchOutfits(ctx, nil, nil, nil, 0, 50, userID)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.TotalCount != 1 {
		t.Fatalf("totalCount = %d, want 1", res.TotalCount)
	}
	for _, o := range res.Items {
		if o.UserID != userID {
			t.Fatal("search leaked a foreign outfit")
		}
	}
}
