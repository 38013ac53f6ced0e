package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by anything that can prove the database is reachable.
type Pinger func(ctx context.Context) error

type Status struct {
	Database  bool      `json:"database"`
	CheckedAt time.Time `json:"checked_at"`
}

type Handler struct {
	ping Pinger
}

func NewHandler(ping Pinger) *Handler {
	return &Handler{ping: ping}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Liveness)
	r.GET("/healthz", h.Readiness)
}

func (h *Handler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "Payment service is running")
}

func (h *Handler) Readiness(c *gin.Context) {
	st := Status{Database: true, CheckedAt: time.Now().UTC()}
	if h.ping != nil {
		st.Database = h.ping(c.Request.Context()) == nil
	}
	if !st.Database {
		c.JSON(http.StatusServiceUnavailable, st)
		return
	}
	c.JSON(http.StatusOK, st)
}
