package handler

import "github.com/fittedco/wardrobe-service/internal/repository"

// searchReq is the shared body for the two search endpoints. All parts are
// optional; an empty body returns the caller's first page sorted newest
// first.
type searchReq struct {
	Search  *repository.Search `json:"search"`
	Filter  *repository.Filter `json:"filter"`
	Sort    *repository.Sort   `json:"sort"`
	Page    int                `json:"page"`
	MaxSize int                `json:"maxSize"`
}
