package constants

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PaginationParams
	}{
		{"", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"page=3&limit=5", PaginationParams{Page: 3, Limit: 5, Offset: 10}},
		{"page=0&limit=0", PaginationParams{Page: 1, Limit: 1, Offset: 0}},
		{"page=abc&limit=1000", PaginationParams{Page: 1, Limit: 100, Offset: 0}},
		{"page=9223372036854775807&limit=100", PaginationParams{Page: MaxPage, Limit: 100, Offset: (MaxPage - 1) * 100}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/videos?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePaginationParams(c))
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 20, PageOffset(3, 10))
	assert.Equal(t, 0, PageOffset(-4, 10))
	assert.Equal(t, (MaxPage-1)*MaxLimit, PageOffset(int(^uint(0)>>1), int(^uint(0)>>1)))
}

func TestBuildListResponse(t *testing.T) {
	resp := BuildListResponse(21, PaginationParams{Page: 2, Limit: 10, Offset: 10}, []string{"a"})
	assert.Equal(t, 3, resp.PageTotal)
	assert.Equal(t, int64(21), resp.Total)

	empty := BuildListResponse(0, PaginationParams{Page: 1, Limit: 10}, []string{})
	assert.Equal(t, 0, empty.PageTotal)
}

func TestBuildEnvelopes(t *testing.T) {
	ok := BuildSuccessResponse(http.StatusCreated, "x", "done")
	assert.True(t, ok.Success)
	assert.Equal(t, 201, ok.StatusCode)

	fail := BuildErrorResponse(http.StatusNotFound, "missing")
	assert.False(t, fail.Success)
	assert.NotNil(t, fail.Errors)
	assert.Empty(t, fail.Errors)
}
