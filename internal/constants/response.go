package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// APIResponse is the success envelope returned by every endpoint.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// APIError is the error envelope. Errors carries field level details.
type APIError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// ListResponse wraps a page of results.
type ListResponse struct {
	Docs      any   `json:"docs"`
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	PageTotal int   `json:"pageTotal"`
}

// PaginationParams holds validated page/limit and the derived offset.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePaginationParams parses page and limit, clamping them into range
func ParsePaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query(QueryParamPage))
	if err != nil {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(c.Query(QueryParamLimit))
	if err != nil {
		limit = DefaultLimit
	}

	page = min(max(page, MinPage), MaxPage)
	limit = min(max(limit, MinLimit), MaxLimit)

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: PageOffset(page, limit),
	}
}

// PageOffset returns the row offset of page, with page and limit clamped
// into range.
func PageOffset(page, limit int) int {
	page = min(max(page, MinPage), MaxPage)
	limit = min(max(limit, MinLimit), MaxLimit)
	return (page - 1) * limit
}

// Response Format Functions
func BuildSuccessResponse(statusCode int, data any, message string) APIResponse {
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

func BuildErrorResponse(statusCode int, message string, details ...string) APIError {
	if details == nil {
		details = []string{}
	}
	return APIError{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
		Errors:     details,
	}
}

func BuildListResponse(total int64, params PaginationParams, docs any) ListResponse {
	pageTotal := 0
	if params.Limit > 0 {
		pageTotal = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return ListResponse{
		Docs:      docs,
		Total:     total,
		Page:      params.Page,
		Limit:     params.Limit,
		PageTotal: pageTotal,
	}
}
