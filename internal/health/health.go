// Package health serves liveness and status over HTTP and the standard
// grpc.health.v1 service, both backed by the database gateway.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda/internal/db"
)

// Store is what the status endpoint needs from the gateway.
type Store interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (db.Stats, error)
}

type Handler struct {
	store   Store
	name    string
	version string
	started time.Time
}

func NewHandler(store Store, name, version string) *Handler {
	return &Handler{store: store, name: name, version: version, started: time.Now()}
}

// Liveness never touches the database.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
}

// Status reports database reachability and row counts.
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{
		"service":   h.name,
		"version":   h.version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}

	if err := h.store.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["database"] = gin.H{"status": "unreachable"}
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	stats, err := h.store.Stats(ctx)
	if err != nil {
		body["status"] = "degraded"
		body["database"] = gin.H{"status": "error"}
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "healthy"
	body["database"] = gin.H{"status": "connected", "counts": stats}
	c.JSON(http.StatusOK, body)
}

// Banner is served on "/".
func (h *Handler) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": h.name + " API",
		"version": h.version,
		"docs":    "/swagger/index.html",
		"health":  "/health",
		"status":  "/status",
	})
}
