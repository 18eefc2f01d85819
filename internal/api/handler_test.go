package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luiggi-Git/carocha-functions/internal/credential"
	"github.com/Luiggi-Git/carocha-functions/internal/gateway"
	"github.com/Luiggi-Git/carocha-functions/internal/observability"
	"github.com/Luiggi-Git/carocha-functions/internal/policy"
	"github.com/Luiggi-Git/carocha-functions/internal/storage"
)

var (
	testKey  = base64.StdEncoding.EncodeToString([]byte("photogate-test-account-key-0123456789"))
	issuedAt = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
)

func newServer(t *testing.T, store storage.ObjectStore) *echo.Echo {
	t.Helper()
	cred, err := credential.Parse("AccountName=carocha;AccountKey=" + testKey)
	require.NoError(t, err)
	svc, err := gateway.New(gateway.Options{
		Credential: cred,
		Container:  "photos",
		Clock:      policy.ClockFunc(func() time.Time { return issuedAt }),
		Store:      store,
	})
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, svc, observability.NewHealthHandler(svc.Container(), svc.Ready))
	return e
}

func do(t *testing.T, e *echo.Echo, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestGetUploadSas(t *testing.T) {
	store := &storage.MockObjectStore{}
	e := newServer(t, store)

	rec, body := do(t, e, http.MethodGet, "/api/getUploadSas?filename="+url.QueryEscape("my cat.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	u, err := url.Parse(body["uploadUrl"].(string))
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "carocha.blob.core.windows.net", u.Host)
	assert.Equal(t, "/photos/my%20cat.png", u.EscapedPath())
	assert.Equal(t, "cw", u.Query().Get("sp"))
	assert.Equal(t, "2026-10-14T11:59:00Z", u.Query().Get("st"), "start is backdated by the default skew")
	assert.Equal(t, "2026-10-14T12:10:00Z", u.Query().Get("se"))
	assert.Equal(t, "2026-10-14T12:10:00Z", body["expiresOn"])
	assert.Zero(t, store.TotalCalls())
}

func TestGetUploadSas_MissingFilename(t *testing.T) {
	store := &storage.MockObjectStore{}
	e := newServer(t, store)

	rec, body := do(t, e, http.MethodGet, "/api/getUploadSas")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing filename", body["error"])
	assert.Zero(t, store.TotalCalls())
}

func TestGetReadSas(t *testing.T) {
	e := newServer(t, &storage.MockObjectStore{})

	rec, body := do(t, e, http.MethodGet, "/api/getReadSas?name=cat.png")

	require.Equal(t, http.StatusOK, rec.Code)
	u, err := url.Parse(body["url"].(string))
	require.NoError(t, err)
	assert.Equal(t, "r", u.Query().Get("sp"))

	rec, _ = do(t, e, http.MethodGet, "/api/getReadSas")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPhotos(t *testing.T) {
	store := storage.NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.jpg", make([]byte, 100)))
	require.NoError(t, store.Put(ctx, "b.jpg", make([]byte, 200)))
	e := newServer(t, store)

	rec, _ := do(t, e, http.MethodGet, "/api/listPhotos")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, issuedAt.Add(10*time.Minute), resp.ExpiresOn.UTC())
	assert.Equal(t, "a.jpg", resp.Items[0].Name)
	assert.Equal(t, int64(100), resp.Items[0].Size)
	assert.Equal(t, "b.jpg", resp.Items[1].Name)
	assert.NotEqual(t, resp.Items[0].URL, resp.Items[1].URL)
	for _, item := range resp.Items {
		u, err := url.Parse(item.URL)
		require.NoError(t, err)
		assert.Equal(t, "r", u.Query().Get("sp"))
	}
}

func TestListPhotos_Empty(t *testing.T) {
	e := newServer(t, storage.NewMemStore())

	rec, _ := do(t, e, http.MethodGet, "/api/listPhotos")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestListPhotos_StoreFailure(t *testing.T) {
	store := &storage.MockObjectStore{
		ListFunc: func(ctx context.Context) ([]storage.ObjectInfo, error) {
			return nil, errors.New("AuthorizationFailure")
		},
	}
	e := newServer(t, store)

	rec, body := do(t, e, http.MethodGet, "/api/listPhotos")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", body["error"])
	assert.Equal(t, "AuthorizationFailure", body["detail"])
	assert.NotContains(t, rec.Body.String(), testKey)
}

func TestDeletePhoto(t *testing.T) {
	store := storage.NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "cat.png", []byte("meow")))
	e := newServer(t, store)

	rec, body := do(t, e, http.MethodDelete, "/api/deletePhoto?name=cat.png")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "cat.png", body["name"])
	exists, err := store.Exists(ctx, "cat.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeletePhoto_Absent(t *testing.T) {
	store := &storage.MockObjectStore{}
	e := newServer(t, store)

	rec, body := do(t, e, http.MethodDelete, "/api/deletePhoto?name=missing.png")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing.png", body["name"])
	assert.Zero(t, store.Calls("Delete"))
}

func TestDeletePhoto_MissingName(t *testing.T) {
	store := &storage.MockObjectStore{}
	e := newServer(t, store)

	for _, target := range []string{"/api/deletePhoto", "/api/deletePhoto?name=%20%20"} {
		rec, body := do(t, e, http.MethodDelete, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, body["error"])
	}
	assert.Zero(t, store.TotalCalls())
}

func TestDeletePhoto_StoreFailure(t *testing.T) {
	store := &storage.MockObjectStore{
		ExistsFunc: func(ctx context.Context, name string) (bool, error) { return true, nil },
		DeleteFunc: func(ctx context.Context, name string) error { return errors.New("LeaseIdMissing") },
	}
	e := newServer(t, store)

	rec, body := do(t, e, http.MethodDelete, "/api/deletePhoto?name=cat.png")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "LeaseIdMissing", body["detail"])
}

func TestDeletePhoto_GetNotAllowed(t *testing.T) {
	store := storage.NewMemStore()
	require.NoError(t, store.Put(context.Background(), "cat.png", []byte("meow")))
	e := newServer(t, store)

	rec, _ := do(t, e, http.MethodGet, "/api/deletePhoto?name=cat.png")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	exists, err := store.Exists(context.Background(), "cat.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHealthRoutes(t *testing.T) {
	e := newServer(t, &storage.MockObjectStore{})

	rec, body := do(t, e, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = do(t, e, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "photos", body["container"])
}
