package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/tienda/internal/db"
	"github.com/MikeMC777/tienda/internal/logger"
)

type fakeStore struct {
	pingErr error
	stats   db.Stats
}

func (s fakeStore) Ping(context.Context) error { return s.pingErr }

func (s fakeStore) Stats(context.Context) (db.Stats, error) { return s.stats, nil }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Liveness)
	r.GET("/status", h.Status)
	r.GET("/", h.Banner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := serve(NewHandler(fakeStore{pingErr: errors.New("down")}, "tienda", "test"), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", gjson.Get(w.Body.String(), "status").String())
}

func TestStatus(t *testing.T) {
	w := serve(NewHandler(fakeStore{stats: db.Stats{Users: 2, Products: 5, Orders: 1}}, "tienda", "test"), "/status")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "healthy", gjson.Get(body, "status").String())
	assert.EqualValues(t, 5, gjson.Get(body, "database.counts.products").Int())

	w = serve(NewHandler(fakeStore{pingErr: errors.New("down")}, "tienda", "test"), "/status")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", gjson.Get(w.Body.String(), "status").String())
}

func TestBanner(t *testing.T) {
	w := serve(NewHandler(fakeStore{}, "tienda", "1.0.0"), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0.0", gjson.Get(w.Body.String(), "version").String())
}

type toggleStore struct {
	mu  sync.Mutex
	err error
}

func (s *toggleStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func TestRefresh_MirrorsPing(t *testing.T) {
	srv, hs := NewGRPCServer(logger.Discard())
	t.Cleanup(srv.Stop)

	check := func() grpc_health_v1.HealthCheckResponse_ServingStatus {
		resp, err := hs.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: Service})
		require.NoError(t, err)
		return resp.GetStatus()
	}
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check())

	store := &toggleStore{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Refresh(ctx, store, hs, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		return check() == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	store.err = errors.New("down")
	store.mu.Unlock()
	assert.Eventually(t, func() bool {
		return check() == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
