package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
)

// outfitSearchSpec: outfits have no scalar text attribute worth searching;
// free text matches the tags array only.
var outfitSearchSpec = EntitySearchSpec{
	Columns: map[string]string{
		"tags":      "tags",
		"createdAt": "created_at",
		"user.id":   "user_id",
	},
	SearchableAttrs:      []string{},
	SearchableArrayAttrs: []string{"tags"},
	DefaultSortAttr:      "createdAt",
}

// OutfitRepo persists outfits and their placement rows. Writes touching
// both tables run inside one transaction: an outfit row without its
// placements (or the reverse) is a correctness bug, not an accepted state.
type OutfitRepo struct{ DB *sql.DB }

func NewOutfitRepo(db *sql.DB) *OutfitRepo { return &OutfitRepo{DB: db} }

// CreateWithPlacements inserts the outfit row and its full placement set
// atomically.
func (r *OutfitRepo) CreateWithPlacements(ctx context.Context, outfit *model.Outfit, placements []model.OutfitClothingItem) error {
	tags, err := encodeTags(outfit.Tags)
	if err != nil {
		return err
	}
	if outfit.CreatedAt.IsZero() {
		outfit.CreatedAt = time.Now().UTC()
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO outfits (id, outfit_image_url, tags, user_id, created_at) VALUES (?,?,?,?,?)",
		outfit.ID.String(), outfit.OutfitImageURL, tags, outfit.UserID.String(), outfit.CreatedAt); err != nil {
		return err
	}
	if err := insertPlacements(ctx, tx, outfit.ID, placements); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceWithPlacements updates the outfit row and swaps its placement set
// for the given one, atomically. The old placement rows are wholly owned by
// the outfit and are simply dropped.
func (r *OutfitRepo) ReplaceWithPlacements(ctx context.Context, outfit *model.Outfit, placements []model.OutfitClothingItem) error {
	tags, err := encodeTags(outfit.Tags)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE outfits SET outfit_image_url=?, tags=? WHERE id=? AND user_id=?",
		outfit.OutfitImageURL, tags, outfit.ID.String(), outfit.UserID.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// No matched row: either a foreign outfit or a vanished one.
		if !r.outfitExists(ctx, tx, outfit.ID, outfit.UserID) {
			return ErrNotFound
		}
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM outfit_clothing_items WHERE outfit_id=?", outfit.ID.String()); err != nil {
		return err
	}
	if err := insertPlacements(ctx, tx, outfit.ID, placements); err != nil {
		return err
	}
	return tx.Commit()
}

// outfitExists distinguishes "nothing changed" from "no such outfit" after
// an UPDATE that matched zero rows.
func (r *OutfitRepo) outfitExists(ctx context.Context, tx *sql.Tx, id, userID uuid.UUID) bool {
	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM outfits WHERE id=? AND user_id=?",
		id.String(), userID.String()).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// GetByIDAndUser fetches an outfit scoped to its owner.
func (r *OutfitRepo) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (model.Outfit, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, outfit_image_url, tags, user_id, created_at FROM outfits WHERE id=? AND user_id=? LIMIT 1",
		id.String(), userID.String())
	outfit, err := scanOutfit(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Outfit{}, ErrNotFound
	}
	return outfit, err
}

// PlacementsWithItems returns the outfit's placement rows joined with the
// referenced clothing item so each placement surfaces its cutout image URL.
func (r *OutfitRepo) PlacementsWithItems(ctx context.Context, outfitID uuid.UUID) ([]model.OutfitClothingItem, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT
			p.id, p.outfit_id, p.clothing_item_id,
			p.position_x_percent, p.position_y_percent,
			p.width_percent, p.height_percent, p.z_index,
			p.created_at, p.updated_at,
			ci.modified_image_url
		FROM outfit_clothing_items p
		JOIN clothing_items ci ON ci.id = p.clothing_item_id
		WHERE p.outfit_id=?
		ORDER BY p.z_index ASC`, outfitID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OutfitClothingItem
	for rows.Next() {
		var (
			p                             model.OutfitClothingItem
			rowID, rowOutfitID, rowItemID string
		)
		if err := rows.Scan(&rowID, &rowOutfitID, &rowItemID,
			&p.PositionXPercent, &p.PositionYPercent,
			&p.WidthPercent, &p.HeightPercent, &p.ZIndex,
			&p.CreatedAt, &p.UpdatedAt, &p.ModifiedImageURL); err != nil {
			return nil, err
		}
		if p.ID, err = uuid.Parse(rowID); err != nil {
			return nil, err
		}
		if p.OutfitID, err = uuid.Parse(rowOutfitID); err != nil {
			return nil, err
		}
		if p.ClothingItemID, err = uuid.Parse(rowItemID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteByIDAndUser removes an owned outfit row; placement rows cascade at
// the schema level.
func (r *OutfitRepo) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM outfits WHERE id=? AND user_id=?",
		id.String(), userID.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search runs the composed filter/search/sort query over outfits.
func (r *OutfitRepo) Search(ctx context.Context, filter *Filter, search *Search, sort *Sort, page, maxSize int, userID uuid.UUID) ([]model.Outfit, int64, error) {
	where, args := BuildWhere(outfitSearchSpec, filter, search, userID)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM outfits WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := Pagination(page, maxSize)
	dataSQL := "SELECT id, outfit_image_url, tags, user_id, created_at FROM outfits WHERE " + where +
		" " + OrderBy(outfitSearchSpec, sort) + " LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, dataSQL, append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Outfit, 0, limit)
	for rows.Next() {
		outfit, err := scanOutfit(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, outfit)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func insertPlacements(ctx context.Context, tx *sql.Tx, outfitID uuid.UUID, placements []model.OutfitClothingItem) error {
	now := time.Now().UTC()
	for i := range placements {
		p := &placements[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.OutfitID = outfitID
		p.CreatedAt = now
		p.UpdatedAt = now
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outfit_clothing_items
				(id, outfit_id, clothing_item_id, position_x_percent, position_y_percent,
				 width_percent, height_percent, z_index, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			p.ID.String(), outfitID.String(), p.ClothingItemID.String(),
			p.PositionXPercent, p.PositionYPercent, p.WidthPercent, p.HeightPercent,
			p.ZIndex, p.CreatedAt, p.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func scanOutfit(scan func(...any) error) (model.Outfit, error) {
	var (
		o      model.Outfit
		id     string
		userID string
		tags   sql.NullString
	)
	if err := scan(&id, &o.OutfitImageURL, &tags, &userID, &o.CreatedAt); err != nil {
		return model.Outfit{}, err
	}
	var err error
	if o.ID, err = uuid.Parse(id); err != nil {
		return model.Outfit{}, err
	}
	if o.UserID, err = uuid.Parse(userID); err != nil {
		return model.Outfit{}, err
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &o.Tags); err != nil {
			return model.Outfit{}, err
		}
	}
	return o, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
