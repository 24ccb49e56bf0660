package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fittedco/wardrobe-service/internal/service"
)

// OutfitHandler bundles dependencies for the outfit endpoints.
type OutfitHandler struct {
	Outfits *service.OutfitService
}

func NewOutfitHandler(outfits *service.OutfitService) *OutfitHandler {
	return &OutfitHandler{Outfits: outfits}
}

var errInvalidClothingItems = errors.New("clothingItems must be a JSON array of placements with valid ids")

// placementReq is one entry of the clothingItems multipart field, which
// carries a JSON array as a string alongside the image file.
type placementReq struct {
	ClothingItemID   string  `json:"clothingItemId"`
	PositionXPercent float64 `json:"positionXPercent"`
	PositionYPercent float64 `json:"positionYPercent"`
	WidthPercent     float64 `json:"widthPercent"`
	HeightPercent    float64 `json:"heightPercent"`
	ZIndex           int     `json:"zIndex"`
}

type placementResp struct {
	ID               string  `json:"id"`
	ClothingItemID   string  `json:"clothingItemId"`
	PositionXPercent float64 `json:"positionXPercent"`
	PositionYPercent float64 `json:"positionYPercent"`
	WidthPercent     float64 `json:"widthPercent"`
	HeightPercent    float64 `json:"heightPercent"`
	ZIndex           int     `json:"zIndex"`
	ModifiedImageURL *string `json:"modified_image_url"`
}

type outfitResp struct {
	ID             string          `json:"id"`
	OutfitImageURL string          `json:"outfit_image_url"`
	Tags           []string        `json:"tags"`
	UserID         string          `json:"userId"`
	CreatedAt      string          `json:"createdAt"`
	ClothingItems  []placementResp `json:"clothingItems"`
}

type outfitSearchResp struct {
	Items      []outfitResp `json:"items"`
	TotalCount int64        `json:"totalCount"`
	HasNext    bool         `json:"hasNext"`
}

// Create handles the multipart upload: outfitImageFile, a clothingItems
// JSON array and optional tags.
func (h *OutfitHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	params, err := h.bindOutfitForm(c, userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	detail, err := h.Outfits.SaveOutfit(c.Request().Context(), params)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusCreated, toOutfitResp(detail))
}

// Get returns one owned outfit with its placements.
func (h *OutfitHandler) Get(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := uuid.Parse(c.QueryParam("outfitId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "outfitId must be a valid id"})
	}

	detail, err := h.Outfits.GetOutfit(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toOutfitResp(detail))
}

// Update replaces an outfit's image, tags and placement set.
func (h *OutfitHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := uuid.Parse(c.QueryParam("outfitId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "outfitId must be a valid id"})
	}

	params, err := h.bindOutfitForm(c, userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	detail, err := h.Outfits.UpdateOutfit(c.Request().Context(), service.UpdateOutfitParams{
		CreateOutfitParams: params,
		OutfitID:           id,
	})
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toOutfitResp(detail))
}

// Delete removes one owned outfit and its composite image.
func (h *OutfitHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := uuid.Parse(c.QueryParam("outfitId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "outfitId must be a valid id"})
	}

	if err := h.Outfits.DeleteOutfit(c.Request().Context(), id, userID); err != nil {
		return writeServiceErr(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Search runs the dynamic filter/search/sort query over the caller's
// outfits. Search results carry the outfit rows only; placements are loaded
// on the detail endpoint.
func (h *OutfitHandler) Search(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var req searchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	res, err := h.Outfits.SearchOutfits(c.Request().Context(),
		req.Filter, req.Search, req.Sort, req.Page, req.MaxSize, userID)
	if err != nil {
		return writeServiceErr(c, err)
	}

	items := make([]outfitResp, 0, len(res.Items))
	for _, o := range res.Items {
		items = append(items, toOutfitResp(service.OutfitDetail{Outfit: o}))
	}
	return c.JSON(http.StatusOK, outfitSearchResp{
		Items:      items,
		TotalCount: res.TotalCount,
		HasNext:    res.HasNext,
	})
}

// bindOutfitForm parses the shared multipart shape of create and update.
func (h *OutfitHandler) bindOutfitForm(c echo.Context, userID uuid.UUID) (service.CreateOutfitParams, error) {
	image, err := readImagePart(c, "outfitImageFile")
	if err != nil {
		return service.CreateOutfitParams{}, err
	}

	var placements []service.PlacementParams
	if raw := strings.TrimSpace(c.FormValue("clothingItems")); raw != "" {
		var reqs []placementReq
		if err := json.Unmarshal([]byte(raw), &reqs); err != nil {
			return service.CreateOutfitParams{}, errInvalidClothingItems
		}
		placements = make([]service.PlacementParams, 0, len(reqs))
		for _, r := range reqs {
			itemID, err := uuid.Parse(r.ClothingItemID)
			if err != nil {
				return service.CreateOutfitParams{}, errInvalidClothingItems
			}
			placements = append(placements, service.PlacementParams{
				ClothingItemID:   itemID,
				PositionXPercent: r.PositionXPercent,
				PositionYPercent: r.PositionYPercent,
				WidthPercent:     r.WidthPercent,
				HeightPercent:    r.HeightPercent,
				ZIndex:           r.ZIndex,
			})
		}
	}

	var tags []string
	if raw := strings.TrimSpace(c.FormValue("tags")); raw != "" {
		// Tags arrive either as a JSON array or as a comma-separated list.
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}
	}

	return service.CreateOutfitParams{
		Image:      image,
		Placements: placements,
		Tags:       tags,
		UserID:     userID,
	}, nil
}

func toOutfitResp(detail service.OutfitDetail) outfitResp {
	placements := make([]placementResp, 0, len(detail.Placements))
	for _, p := range detail.Placements {
		placements = append(placements, placementResp{
			ID:               p.ID.String(),
			ClothingItemID:   p.ClothingItemID.String(),
			PositionXPercent: p.PositionXPercent,
			PositionYPercent: p.PositionYPercent,
			WidthPercent:     p.WidthPercent,
			HeightPercent:    p.HeightPercent,
			ZIndex:           p.ZIndex,
			ModifiedImageURL: p.ModifiedImageURL,
		})
	}
	tags := detail.Outfit.Tags
	if tags == nil {
		tags = []string{}
	}
	return outfitResp{
		ID:             detail.Outfit.ID.String(),
		OutfitImageURL: detail.Outfit.OutfitImageURL,
		Tags:           tags,
		UserID:         detail.Outfit.UserID.String(),
		CreatedAt:      detail.Outfit.CreatedAt.UTC().Format(time.RFC3339),
		ClothingItems:  placements,
	}
}
