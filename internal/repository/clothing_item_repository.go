package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
)

// clothingItemSearchSpec exposes the attributes clients may search, filter
// and sort clothing items by. "name" is the default free-text target.
var clothingItemSearchSpec = EntitySearchSpec{
	Columns: map[string]string{
		"name":      "name",
		"type":      "type",
		"color":     "color",
		"createdAt": "created_at",
		"user.id":   "user_id",
	},
	SearchableAttrs: []string{"name"},
	DefaultSortAttr: "createdAt",
}

const clothingItemColumns = "id, name, type, original_image_url, modified_image_url, color, user_id, created_at"

// ClothingItemRepo persists rows of the 'clothing_items' table.
type ClothingItemRepo struct{ DB *sql.DB }

func NewClothingItemRepo(db *sql.DB) *ClothingItemRepo { return &ClothingItemRepo{DB: db} }

// Create inserts a clothing item row. The id is chosen by the caller so
// object keys can embed it before the row exists.
func (r *ClothingItemRepo) Create(ctx context.Context, item *model.ClothingItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO clothing_items ("+clothingItemColumns+") VALUES (?,?,?,?,?,?,?,?)",
		item.ID.String(), item.Name, string(item.Type), item.OriginalImageURL,
		item.ModifiedImageURL, item.Color, item.UserID.String(), item.CreatedAt)
	return err
}

// GetByIDAndUser fetches an item scoped to its owner. A foreign or missing
// id both come back as ErrNotFound.
func (r *ClothingItemRepo) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (model.ClothingItem, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+clothingItemColumns+" FROM clothing_items WHERE id=? AND user_id=? LIMIT 1",
		id.String(), userID.String())
	item, err := scanClothingItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ClothingItem{}, ErrNotFound
	}
	return item, err
}

// DeleteByIDAndUser removes an owned item row.
func (r *ClothingItemRepo) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM clothing_items WHERE id=? AND user_id=?",
		id.String(), userID.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOwned returns how many of the given ids exist and belong to the
// user. Outfit validation compares this against the requested id count to
// reject foreign or nonexistent references.
func (r *ClothingItemRepo) CountOwned(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id.String())
	}
	args = append(args, userID.String())

	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clothing_items WHERE id IN ("+placeholders+") AND user_id=?",
		args...).Scan(&n)
	return n, err
}

// Search runs the composed filter/search/sort query and returns one page of
// items plus the total match count.
func (r *ClothingItemRepo) Search(ctx context.Context, filter *Filter, search *Search, sort *Sort, page, maxSize int, userID uuid.UUID) ([]model.ClothingItem, int64, error) {
	where, args := BuildWhere(clothingItemSearchSpec, filter, search, userID)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clothing_items WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := Pagination(page, maxSize)
	dataSQL := "SELECT " + clothingItemColumns + " FROM clothing_items WHERE " + where +
		" " + OrderBy(clothingItemSearchSpec, sort) + " LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, dataSQL, append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.ClothingItem, 0, limit)
	for rows.Next() {
		item, err := scanClothingItem(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanClothingItem(scan func(...any) error) (model.ClothingItem, error) {
	var (
		item     model.ClothingItem
		id       string
		userID   string
		itemType string
	)
	if err := scan(&id, &item.Name, &itemType, &item.OriginalImageURL,
		&item.ModifiedImageURL, &item.Color, &userID, &item.CreatedAt); err != nil {
		return model.ClothingItem{}, err
	}
	item.Type = model.ClothingType(itemType)
	var err error
	if item.ID, err = uuid.Parse(id); err != nil {
		return model.ClothingItem{}, err
	}
	if item.UserID, err = uuid.Parse(userID); err != nil {
		return model.ClothingItem{}, err
	}
	return item, nil
}
