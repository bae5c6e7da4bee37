package verification

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"factcheck/factcheck-backend/internal/queries"
)

// StatusReporter supplies database counters for the status endpoint
type StatusReporter interface {
	Status(ctx context.Context) (*queries.DatabaseStatus, error)
}

// Handler serves the verification endpoints
type Handler struct {
	service *Service
	status  StatusReporter
	logger  *zap.Logger
}

// NewHandler creates a new verification handler
func NewHandler(service *Service, status StatusReporter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, status: status, logger: logger}
}

// RegisterRoutes registers the public verification routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/verify", h.Verify)
	rg.POST("/verify/v2", h.VerifyHybrid)
	rg.POST("/verify/mobile", h.VerifyMobile)
	rg.GET("/status", h.Status)
}

// RegisterAdminRoutes registers routes that must sit behind the admin guard
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/check-ai", h.CheckGenerative)
}

type verifyBody struct {
	Text     string `json:"text"`
	URL      string `json:"url"`
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

func (b verifyBody) request(mode Mode, useGenerative bool) VerifyRequest {
	return VerifyRequest{
		Text:          b.Text,
		URL:           b.URL,
		UserID:        b.UserID,
		DeviceID:      b.DeviceID,
		Mode:          mode,
		UseGenerative: useGenerative,
	}
}

// Verify only consults published fact-checks
func (h *Handler) Verify(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, body.request(ModeClaimSearchOnly, false), false)
}

// VerifyHybrid runs the hybrid pipeline with the mode from the query string
func (h *Handler) VerifyHybrid(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode, err := ParseMode(c.DefaultQuery("mode", string(ModeAuto)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	useGenerative, err := strconv.ParseBool(c.DefaultQuery("use_ai", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "use_ai must be a boolean"})
		return
	}

	h.respond(c, body.request(mode, useGenerative), false)
}

// VerifyMobile runs the hybrid pipeline in auto mode and reports input
// problems in the body rather than the status code.
func (h *Handler) VerifyMobile(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, body.request(ModeAuto, true), true)
}

func (h *Handler) respond(c *gin.Context, req VerifyRequest, softInputErrors bool) {
	resp, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		if softInputErrors && status == http.StatusBadRequest {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
		if status == http.StatusInternalServerError {
			h.logger.Error("Verification request failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckGenerative probes the generative backend
func (h *Handler) CheckGenerative(c *gin.Context) {
	if err := h.service.CheckGenerative(c.Request.Context()); err != nil {
		h.logger.Warn("Generative backend check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "generative backend is reachable"})
}

// Status reports database counters and generative backend health
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	overall := "ok"
	out := gin.H{"timestamp": time.Now().UTC()}

	if h.status != nil {
		db, err := h.status.Status(ctx)
		if err != nil {
			overall = "degraded"
			out["database"] = gin.H{"status": "error", "error": err.Error()}
		} else {
			out["database"] = gin.H{"status": "ok", "counters": db}
		}
	}

	if err := h.service.CheckGenerative(ctx); err != nil {
		overall = "degraded"
		out["generative"] = gin.H{"status": "error", "error": err.Error()}
	} else {
		out["generative"] = gin.H{"status": "ok"}
	}

	out["status"] = overall
	c.JSON(http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrExtraction):
		return http.StatusBadRequest
	case errors.Is(err, queries.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
