package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContextWithRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/videos", nil)
	req.Header.Set("User-Agent", "curl/8.0")

	ctx := NewContextWithRequest(context.Background(), req, "handler", "ListVideos")

	assert.Equal(t, "handler", GetModule(ctx))
	assert.Equal(t, "ListVideos", GetFunction(ctx))
	assert.Equal(t, "curl/8.0", GetUserAgent(ctx))
	assert.NotEmpty(t, GetClientIP(ctx))
	assert.False(t, GetStartTime(ctx).IsZero())
}

func TestNewContextWithRequest_KeepsClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	ctx := WithClientIP(context.Background(), "10.0.0.7")

	ctx = NewContextWithRequest(ctx, req, "handler", "x")

	assert.Equal(t, "10.0.0.7", GetClientIP(ctx))
}

func TestUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}
