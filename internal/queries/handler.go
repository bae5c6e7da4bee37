package queries

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"factcheck/factcheck-backend/internal/queries/export"
)

// Handler serves stored queries over HTTP
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new query handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the public history routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.History)
	rg.GET("/history/export", h.Export)
	rg.GET("/queries/:id", h.Get)
	rg.GET("/stats", h.Stats)
	rg.GET("/stats/v2", h.StatsV2)
}

// RegisterAdminRoutes registers routes that must sit behind the admin guard
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/purge", h.Purge)
}

func (h *Handler) History(c *gin.Context) {
	limit, err := intQuery(c, "limit", DefaultLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	page, err := h.service.History(c.Request.Context(), filterFrom(c), limit, offset)
	if err != nil {
		if errors.Is(err, ErrInvalidLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to list history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), &buf, format, filterFrom(c)); err != nil {
		h.logger.Error("Failed to export history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(h.service.now())+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	q, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, q)
}

func (h *Handler) Stats(c *gin.Context) {
	h.stats(c, false)
}

func (h *Handler) StatsV2(c *gin.Context) {
	h.stats(c, true)
}

func (h *Handler) stats(c *gin.Context, withDistribution bool) {
	stats, err := h.service.Stats(c.Request.Context(), withDistribution)
	if err != nil {
		h.logger.Error("Failed to aggregate stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Purge(c *gin.Context) {
	days, err := intQuery(c, "days", 30)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
		return
	}

	deleted, err := h.service.Purge(c.Request.Context(), days)
	if err != nil {
		if errors.Is(err, ErrInvalidDays) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "days": days})
}

func filterFrom(c *gin.Context) Filter {
	var f Filter
	if userID := c.Query("user_id"); userID != "" {
		f.UserID = &userID
	}
	return f
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
