package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the routes without a database. Handlers that hit
// the database are not exercised here; these tests cover the surface in
// front of them.
func newTestServer() *Server {
	s := &Server{}
	s.setupEcho()
	return s
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	s := newTestServer()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodGet, "/api/v1/record"},
		{http.MethodPost, "/api/v1/collections/todos"},
		{http.MethodGet, "/api/v1/collections/todos"},
		{http.MethodDelete, "/api/v1/collections/todos/documents/x"},
	}

	for _, tt := range paths {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestAuthMiddlewareRejectsBadFormat(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization format")
}

func TestReadDocumentBody(t *testing.T) {
	e := echo.New()

	makeCtx := func(payload string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return e.NewContext(req, httptest.NewRecorder())
	}

	body, err := readDocumentBody(makeCtx(`{"title":"t","completed":false}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","completed":false}`, string(body))

	_, err = readDocumentBody(makeCtx(`[1,2,3]`))
	assert.Error(t, err)

	_, err = readDocumentBody(makeCtx(`"just a string"`))
	assert.Error(t, err)

	_, err = readDocumentBody(makeCtx(`not json`))
	assert.Error(t, err)
}
