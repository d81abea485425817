package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storesync/internal/httputil"
)

func paginationContext(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/sync/dead-letters"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("defaults", func(t *testing.T) {
		offset, limit, err := httputil.ParsePagination(paginationContext(""))
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, httputil.DefaultPageLimit, limit)
	})

	t.Run("second page of dead letters", func(t *testing.T) {
		offset, limit, err := httputil.ParsePagination(paginationContext("?entity_type=pack&offset=20&limit=20"))
		require.NoError(t, err)
		assert.Equal(t, 20, offset)
		assert.Equal(t, 20, limit)
	})

	t.Run("largest page", func(t *testing.T) {
		_, limit, err := httputil.ParsePagination(paginationContext("?limit=100"))
		require.NoError(t, err)
		assert.Equal(t, httputil.MaxPageLimit, limit)
	})

	invalid := map[string]string{
		"?offset=-1":  "invalid offset parameter: must be a non-negative integer",
		"?offset=two": "invalid offset parameter: must be a non-negative integer",
		"?limit=0":    "invalid limit parameter: must be between 1 and 100",
		"?limit=101":  "invalid limit parameter: must be between 1 and 100",
		"?limit=all":  "invalid limit parameter: must be between 1 and 100",
	}
	for query, msg := range invalid {
		t.Run("rejects "+query, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(paginationContext(query))
			assert.EqualError(t, err, msg)
			assert.Zero(t, offset)
			assert.Zero(t, limit)
		})
	}
}
