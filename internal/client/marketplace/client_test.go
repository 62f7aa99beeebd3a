package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/lib/logger/sl"
	"marketplace_admin/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(sl.Discard(), srv.URL+"/", 0)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListPublications(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/publicaciones", r.URL.Path)
		assert.Equal(t, "v1", r.URL.Query().Get("id_vendedor"))

		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "p1", "titulo": "Silla", "estado": "activo", "precio": 10.5,
				"multimedia": []map[string]any{{"id": "m1", "url": "http://x/1.jpg", "orden": 0, "tipo": "imagen"}}},
		})
	})

	pubs, err := c.ListPublications(context.Background(), url.Values{"id_vendedor": {"v1"}})
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "p1", pubs[0].ID)
	assert.Equal(t, models.StatusActive, pubs[0].Status)
	require.NotNil(t, pubs[0].Price)
	assert.True(t, decimal.RequireFromString("10.5").Equal(*pubs[0].Price))
	assert.Equal(t, []string{"m1"}, pubs[0].MediaIDs())
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantNotFnd  bool
	}{
		{
			name:        "message field",
			status:      http.StatusBadRequest,
			body:        `{"message":"titulo demasiado corto"}`,
			wantMessage: "titulo demasiado corto",
		},
		{
			name:        "message list",
			status:      http.StatusBadRequest,
			body:        `{"message":["a","b"],"error":"Bad Request"}`,
			wantMessage: "a; b",
		},
		{
			name:        "mensaje field",
			status:      http.StatusConflict,
			body:        `{"mensaje":"ya existe"}`,
			wantMessage: "ya existe",
		},
		{
			name:        "not json",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: genericErrorMessage,
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"message":"Publicación no encontrada"}`,
			wantMessage: "Publicación no encontrada",
			wantNotFnd:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.GetPublication(context.Background(), "p1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantNotFnd, errors.Is(err, storage.ErrPublicationNotFound))
			assert.Equal(t, tt.wantNotFnd, IsNotFound(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(sl.Discard(), srv.URL, time.Second)

	_, err := c.ListCategories(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_CreatePublication(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/publicaciones", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"titulo":"Silla de oficina ergonómica",
			"descripcion":"Silla usada en buen estado, poco uso",
			"precio":120.5,
			"estado":"en_revision",
			"id_producto":"prod-1"
		}`, string(raw))

		writeJSON(w, http.StatusCreated, map[string]any{"id": "p9", "titulo": "Silla de oficina ergonómica", "estado": "en_revision"})
	})

	price := decimal.RequireFromString("120.5")
	pub, err := c.CreatePublication(context.Background(), CreatePublicationInput{
		Title:       "Silla de oficina ergonómica",
		Description: "Silla usada en buen estado, poco uso",
		Price:       &price,
		Status:      models.StatusInReview,
		ProductID:   "prod-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", pub.ID)
}

func TestClient_UpdatePublicationSendsOnlySetFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/publicaciones/p1", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"titulo":"Nuevo titulo"}`, string(raw))

		writeJSON(w, http.StatusOK, map[string]any{"id": "p1", "titulo": "Nuevo titulo"})
	})

	title := "Nuevo titulo"
	_, err := c.UpdatePublication(context.Background(), "p1", UpdatePublicationInput{Title: &title})
	require.NoError(t, err)
}

func TestClient_ChangeStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/publicaciones/p1/estado", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"estado":"pausado"}`, string(raw))

		writeJSON(w, http.StatusOK, map[string]any{"id": "p1", "estado": "pausado"})
	})

	pub, err := c.ChangeStatus(context.Background(), "p1", models.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, pub.Status)
}

func TestClient_DeleteRoutes(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, c.DeletePublication(ctx, "p1"))
	require.NoError(t, c.DeleteMedia(ctx, "m1"))
	require.NoError(t, c.DeleteUpload(ctx, "marketplace/abc 1"))

	assert.Equal(t, []string{
		"/publicaciones/p1",
		"/publicaciones/multimedia/m1",
		"/upload/marketplace%2Fabc%201",
	}, paths)
}

func TestClient_AddMediaAndModeration(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/publicaciones/p1/multimedia":
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"url":"http://x/a.jpg","tipo":"imagen"}`, string(raw))
			writeJSON(w, http.StatusCreated, map[string]any{"id": "m7", "url": "http://x/a.jpg", "tipo": "imagen", "orden": 3})
		case "/publicaciones/p1/moderacion":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "r1", "motivo": "Fotos borrosas"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()

	media, err := c.AddMedia(ctx, "p1", MediaInput{URL: "http://x/a.jpg", Type: models.MediaTypeImage})
	require.NoError(t, err)
	assert.Equal(t, "m7", media.ID)
	assert.Equal(t, 3, media.Order)

	records, err := c.GetModeration(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Fotos borrosas", records[0].Reason)
}

func TestClient_Categories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categorias":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "c1", "nombre": "Hogar", "activa": true}})
		case "/categorias/activas":
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Cannot GET /categorias/activas"})
		case "/categorias/c1":
			writeJSON(w, http.StatusOK, map[string]any{"id": "c1", "nombre": "Hogar", "activa": true})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
		}
	})

	ctx := context.Background()

	all, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = c.ListActiveCategories(ctx)
	assert.True(t, IsNotFound(err))

	cat, err := c.GetCategory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Hogar", cat.Name)

	_, err = c.GetCategory(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
}

func TestClient_UploadImages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		switch r.URL.Path {
		case "/upload/image":
			files := r.MultipartForm.File["file"]
			require.Len(t, files, 1)
			assert.Equal(t, "a.png", files[0].Filename)
			assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))
			writeJSON(w, http.StatusCreated, map[string]any{
				"mensaje": "ok",
				"imagen":  map[string]any{"url": "http://cdn/a.png", "publicId": "mk/a", "width": 10, "height": 20, "format": "png", "bytes": 3},
			})
		case "/upload/images":
			files := r.MultipartForm.File["files"]
			require.Len(t, files, 2)
			assert.Equal(t, "a.png", files[0].Filename)
			assert.Equal(t, "b.jpg", files[1].Filename)
			writeJSON(w, http.StatusCreated, map[string]any{
				"mensaje": "ok",
				"imagenes": []map[string]any{
					{"url": "http://cdn/a.png", "publicId": "mk/a"},
					{"url": "http://cdn/b.jpg", "publicId": "mk/b"},
				},
			})
		}
	})

	ctx := context.Background()
	a := models.UploadFile{Name: "a.png", ContentType: "image/png", Size: 3, Data: []byte{1, 2, 3}}
	b := models.UploadFile{Name: "b.jpg", ContentType: "image/jpeg", Size: 1, Data: []byte{4}}

	asset, err := c.UploadImage(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "mk/a", asset.PublicID)
	assert.Equal(t, 20, asset.Height)

	assets, err := c.UploadImages(ctx, []models.UploadFile{a, b})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "mk/a", assets[0].PublicID)
	assert.Equal(t, "mk/b", assets[1].PublicID)
}
