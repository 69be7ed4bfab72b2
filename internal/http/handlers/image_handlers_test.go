package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/phambaophuc/image-derivative/internal/services/derivative"
	"github.com/phambaophuc/image-derivative/internal/services/processor"
	"github.com/phambaophuc/image-derivative/internal/services/sizespec"
	"github.com/phambaophuc/image-derivative/internal/services/storage"
	"github.com/phambaophuc/image-derivative/internal/services/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "handler-secret"

type fakeQueue struct {
	status string
	err    error
}

func (q *fakeQueue) HealthCheck() string { return q.status }

func (q *fakeQueue) GetQueueStats() (map[string]interface{}, error) {
	if q.err != nil {
		return nil, q.err
	}
	return map[string]interface{}{"messages": 3}, nil
}

type staticChecker map[string]string

func (s staticChecker) HealthCheck(ctx context.Context) map[string]string { return s }

func newTestHandler(t *testing.T, queue QueueStatus, checkers ...storage.HealthChecker) (*gin.Engine, *storage.MemoryGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := storage.NewMemoryGateway()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewNRGBA(image.Rect(0, 0, 640, 480))))
	_, err := mem.Put(context.Background(), "origin", "photos/1.png", buf.Bytes(), storage.PutOptions{})
	require.NoError(t, err)

	service := derivative.NewService(derivative.Options{
		OriginBucket:     "origin",
		DestBucket:       "dest",
		StorageURL:       "https://storage.example.com",
		DestCDNURL:       "https://cdn.example.com",
		ResizeCacheCheck: true,
		BlurCacheCheck:   true,
	}, derivative.Dependencies{
		Origin:    mem,
		Dest:      mem,
		Parser:    sizespec.NewParser(nil),
		Validator: token.NewValidator(testSecret, zap.NewNop()),
		Engine:    processor.NewEngine(0, 0, 0),
	}, zap.NewNop())

	h := NewImageHandler(service, checkers, queue, nil, zap.NewNop())

	router := gin.New()
	router.GET("/resize", h.ResizeImage)
	router.GET("/blur", h.BlurImage)
	router.GET("/health", h.HealthCheck)
	router.GET("/stats", h.GetStats)
	return router, mem
}

func signedQuery(t *testing.T, audience string, params url.Values) string {
	t.Helper()
	tok, err := token.NewIssuer(testSecret, token.DefaultTTL).Issue(audience)
	require.NoError(t, err)
	params.Set("token", tok)
	return params.Encode()
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestResizeImage(t *testing.T) {
	router, mem := newTestHandler(t, nil)

	q := signedQuery(t, "480w/photos/1.png", url.Values{"key": {"photos/1.png"}, "size": {"480w"}})
	w := serve(router, "/resize?"+q)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://cdn.example.com/480w/photos/1.png", w.Header().Get("Location"))
	assert.Empty(t, w.Body.String())

	_, err := mem.Get(context.Background(), "dest", "480w/photos/1.png")
	assert.NoError(t, err)

	q = signedQuery(t, "480w/photos/1.png", url.Values{"key": {"photos/1.png"}, "size": {"480w"}, "check_exists": {"1"}})
	w = serve(router, "/resize?"+q)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
}

func TestResizeImageWithoutSize(t *testing.T) {
	router, _ := newTestHandler(t, nil)

	q := signedQuery(t, "photos/1.png", url.Values{"key": {"photos/1.png"}})
	w := serve(router, "/resize?"+q)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://storage.example.com/photos/1.png", w.Header().Get("Location"))
}

func TestResizeImageRejections(t *testing.T) {
	router, _ := newTestHandler(t, nil)

	w := serve(router, "/resize?size=480w")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, `"Invalid key."`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = serve(router, "/resize?key=photos/1.png&size=480w&token=garbage")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, `"Invalid token."`, w.Body.String())

	q := signedQuery(t, "481w/photos/1.png", url.Values{"key": {"photos/1.png"}, "size": {"481w"}})
	w = serve(router, "/resize?"+q)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"Invalid file."`, w.Body.String())
}

func TestBlurImage(t *testing.T) {
	router, _ := newTestHandler(t, nil)

	q := signedQuery(t, "blur/128x128/photos/1.png", url.Values{"key": {"photos/1.png"}, "size": {"128x128"}})
	w := serve(router, "/blur?"+q)

	require.Equal(t, http.StatusOK, w.Code)
	var result models.BlurhashResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "128x128", result.BlurhashThumbnail)
	assert.Equal(t, "128", result.BlurhashImageWidth)
	assert.Equal(t, "128", result.BlurhashImageHeight)
	assert.NotEmpty(t, result.Blurhash)
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestHandler(t, nil, staticChecker{"memory": "healthy"})
	w := serve(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    models.HealthCheck `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, "not configured", resp.Data.Services["rabbitmq"])

	router, _ = newTestHandler(t, &fakeQueue{status: "unhealthy: connection closed"}, staticChecker{"memory": "healthy"})
	w = serve(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetStats(t *testing.T) {
	router, _ := newTestHandler(t, &fakeQueue{status: "healthy"})
	w := serve(router, "/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messages":3`)

	router, _ = newTestHandler(t, &fakeQueue{status: "healthy", err: errors.New("inspect failed")})
	w = serve(router, "/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"queue"`)
}
