package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dynlink/internal/config"
	"dynlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateLinkAPI(t *testing.T) {
	env := setupTestHandler(t)
	r := setupTestRouter(env.h, nil)

	t.Run("Success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, postJSON(t, "/api/v1/links", map[string]string{
			"desktop_url": "https://example.com/desktop",
			"android_url": "https://play.google.com/store/apps/details?id=x",
		}))
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Code     string              `json:"code"`
			ShortURL string              `json:"short_url"`
			Links    models.Destinations `json:"links"`
			QRCode   string              `json:"qr_code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Code, 7)
		assert.Equal(t, "https://dl.example.org/"+resp.Code, resp.ShortURL)
		assert.Equal(t, "https://example.com/desktop", resp.Links.Desktop)
		assert.NotEmpty(t, resp.QRCode)

		link, err := env.store.GetByCode(context.Background(), resp.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(0), link.ClickCount)
	})

	t.Run("All destinations empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, postJSON(t, "/api/v1/links", map[string]string{"desktop_url": ""}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("Malformed URL", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, postJSON(t, "/api/v1/links", map[string]string{"desktop_url": "not a url"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "desktop_url")
	})

	t.Run("Deep link destination", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, postJSON(t, "/api/v1/links", map[string]string{
			"android_url": "market://details?id=com.example.app",
		}))
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "market://details?id=com.example.app")
	})

	t.Run("Script URL rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, postJSON(t, "/api/v1/links", map[string]string{"ios_url": "javascript:alert(1)"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ios_url")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/links", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateLinkAPI_HostFallback(t *testing.T) {
	env := setupTestHandler(t, func(c *config.Config) { c.BaseURL = "https://your-domain.com" })
	r := setupTestRouter(env.h, nil)

	t.Run("Forwarded proto", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := postJSON(t, "/api/v1/links", map[string]string{"desktop_url": "https://example.com"})
		req.Host = "links.example.net"
		req.Header.Set("X-Forwarded-Proto", "https")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp["short_url"].(string), "https://links.example.net/"))
	})

	t.Run("Plain http", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := postJSON(t, "/api/v1/links", map[string]string{"desktop_url": "https://example.com"})
		req.Host = "links.example.net"
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp["short_url"].(string), "http://links.example.net/"))
	})
}

func TestGetAndListLinks(t *testing.T) {
	env := setupTestHandler(t)
	r := setupTestRouter(env.h, nil)
	seedLink(t, env.store, "list001", models.Destinations{Desktop: "https://d.example.com"})

	t.Run("Get existing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/links/list001", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var link models.DynamicLink
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
		assert.Equal(t, "list001", link.ID)
		assert.Equal(t, "https://d.example.com", link.Links.Desktop)
	})

	t.Run("Get missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/links/missing", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List recent", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/links", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Links []models.DynamicLink `json:"links"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Links, 1)
		assert.Equal(t, "list001", resp.Links[0].ID)
	})
}
