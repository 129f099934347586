package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func paginationContext(t *testing.T, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestPaginationDefaults(t *testing.T) {
	limit, offset := pagination(paginationContext(t, ""))
	require.Equal(t, 20, limit)
	require.Equal(t, 0, offset)
}

func TestPagination(t *testing.T) {
	limit, offset := pagination(paginationContext(t, "limit=50&page=2"))
	require.Equal(t, 50, limit)
	require.Equal(t, 100, offset)
}

func TestPaginationCapsLimit(t *testing.T) {
	limit, _ := pagination(paginationContext(t, "limit=5000"))
	require.Equal(t, 100, limit)
}

func TestPaginationIgnoresGarbage(t *testing.T) {
	limit, offset := pagination(paginationContext(t, "limit=abc&page=-4"))
	require.Equal(t, 20, limit)
	require.Equal(t, 0, offset)
}
