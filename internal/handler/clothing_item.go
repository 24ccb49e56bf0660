package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/service"
)

// ClothingItemHandler bundles dependencies for the clothing item endpoints.
type ClothingItemHandler struct {
	Items *service.ClothingItemService
}

func NewClothingItemHandler(items *service.ClothingItemService) *ClothingItemHandler {
	return &ClothingItemHandler{Items: items}
}

// clothingItemResp mixes snake_case URL fields into otherwise camelCase
// JSON; existing clients depend on the split exactly as is.
type clothingItemResp struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	OriginalImageURL string  `json:"original_image_url"`
	ModifiedImageURL *string `json:"modified_image_url"`
	Color            *string `json:"color"`
	UserID           string  `json:"userId"`
	CreatedAt        string  `json:"createdAt"`
}

type clothingItemSearchResp struct {
	Items      []clothingItemResp `json:"items"`
	TotalCount int64              `json:"totalCount"`
	HasNext    bool               `json:"hasNext"`
}

// Create handles the multipart upload: name, type, optional color, plus the
// original photo and its background-removed counterpart.
func (h *ClothingItemHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	itemType, ok := model.ParseClothingType(c.FormValue("type"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be one of: top, bottom, shoes, accessory, dress, outerwear"})
	}
	var color *string
	if v := strings.TrimSpace(c.FormValue("color")); v != "" {
		color = &v
	}

	original, err := readImagePart(c, "originalImageFile")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	modified, err := readImagePart(c, "modifiedImageFile")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	item, err := h.Items.SaveClothingItem(c.Request().Context(), service.SaveClothingItemParams{
		Name:          name,
		Type:          itemType,
		Color:         color,
		OriginalImage: original,
		ModifiedImage: modified,
		UserID:        userID,
	})
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusCreated, toClothingItemResp(item))
}

// Get returns one owned item, looked up by the clothingItemId query param.
func (h *ClothingItemHandler) Get(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := uuid.Parse(c.QueryParam("clothingItemId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "clothingItemId must be a valid id"})
	}

	item, err := h.Items.GetClothingItem(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toClothingItemResp(item))
}

// Delete removes one owned item and its media.
func (h *ClothingItemHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := uuid.Parse(c.QueryParam("clothingItemId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "clothingItemId must be a valid id"})
	}

	if err := h.Items.DeleteClothingItem(c.Request().Context(), id, userID); err != nil {
		return writeServiceErr(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Search runs the dynamic filter/search/sort query over the caller's items.
func (h *ClothingItemHandler) Search(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var req searchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	res, err := h.Items.SearchClothingItems(c.Request().Context(),
		req.Filter, req.Search, req.Sort, req.Page, req.MaxSize, userID)
	if err != nil {
		return writeServiceErr(c, err)
	}

	items := make([]clothingItemResp, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, toClothingItemResp(item))
	}
	return c.JSON(http.StatusOK, clothingItemSearchResp{
		Items:      items,
		TotalCount: res.TotalCount,
		HasNext:    res.HasNext,
	})
}

// readImagePart reads one multipart file into memory. The service layer
// owns validation; here a missing part only becomes an empty upload so the
// service can produce its own message.
func readImagePart(c echo.Context, field string) (service.ImageUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return service.ImageUpload{}, nil
	}
	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) (service.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.ImageUpload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.ImageUpload{}, err
	}
	return service.ImageUpload{FileName: fh.Filename, Data: data}, nil
}

func toClothingItemResp(item model.ClothingItem) clothingItemResp {
	return clothingItemResp{
		ID:               item.ID.String(),
		Name:             item.Name,
		Type:             string(item.Type),
		OriginalImageURL: item.OriginalImageURL,
		ModifiedImageURL: item.ModifiedImageURL,
		Color:            item.Color,
		UserID:           item.UserID.String(),
		CreatedAt:        item.CreatedAt.UTC().Format(time.RFC3339),
	}
}
