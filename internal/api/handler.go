package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stays-dashboard/internal/service"
	"stays-dashboard/internal/util"
	"stays-dashboard/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	dashboard   *service.DashboardService
	reconciler  *webhook.Reconciler
	apiToken    string
	corsOrigins []string
}

// NewHandler creates a new HTTP handler
func NewHandler(dashboard *service.DashboardService, reconciler *webhook.Reconciler, apiToken string, corsOrigins []string) *Handler {
	return &Handler{
		dashboard:   dashboard,
		reconciler:  reconciler,
		apiToken:    apiToken,
		corsOrigins: corsOrigins,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(h.corsMiddleware())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := router.Group("/", h.authMiddleware())
	{
		authed.GET("/reservas", h.getReservas)
		authed.GET("/calendario", h.getCalendario)
		authed.GET("/repasse", h.getRepasse)
		authed.GET("/ocupacao", h.getOcupacao)
		authed.GET("/listings", h.getListings)
		authed.POST("/webhooks/stays", h.webhookStays)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getReservas lists reservations for a date range
func (h *Handler) getReservas(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetros from e to são obrigatórios"})
		return
	}

	reservas, err := h.dashboard.GetReservas(c.Request.Context(), from, to, c.Query("listing_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list reservations",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, reservas)
}

// getCalendario returns the per-day month view
func (h *Handler) getCalendario(c *gin.Context) {
	result, err := h.dashboard.GetCalendario(c.Request.Context(), c.Query("mes"))
	if err != nil {
		h.renderMonthError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getRepasse returns the payout estimate for a month
func (h *Handler) getRepasse(c *gin.Context) {
	var incluirLimpeza *bool
	if raw := c.Query("incluir_limpeza"); raw != "" {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "incluir_limpeza deve ser true ou false"})
			return
		}
		incluirLimpeza = &val
	}

	result, err := h.dashboard.GetRepasse(c.Request.Context(), c.Query("mes"), incluirLimpeza)
	if err != nil {
		h.renderMonthError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getOcupacao returns occupancy metrics for a month
func (h *Handler) getOcupacao(c *gin.Context) {
	result, err := h.dashboard.GetOcupacao(c.Request.Context(), c.Query("mes"))
	if err != nil {
		h.renderMonthError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getListings lists active units
func (h *Handler) getListings(c *gin.Context) {
	listings, err := h.dashboard.GetListings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list units",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, listings)
}

// webhookStays ingests a Stays webhook delivery. A redelivered event answers
// with status duplicate; both cases are 200s.
func (h *Handler) webhookStays(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty webhook payload"})
		return
	}

	outcome, err := h.reconciler.Process(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process webhook",
			"details": err.Error(),
		})
		return
	}

	status := "accepted"
	if outcome.Duplicate {
		status = "duplicate"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"event_id": outcome.EventID,
		"applied":  outcome.Applied,
	})
}

func (h *Handler) renderMonthError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidMes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidMes.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to compute response",
		"details": err.Error(),
	})
}

// authMiddleware enforces the bearer API token
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token != h.apiToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Next()
	}
}

// corsMiddleware allows the configured dashboard origins
func (h *Handler) corsMiddleware() gin.HandlerFunc {
	allowed := make(map[string]bool, len(h.corsOrigins))
	for _, origin := range h.corsOrigins {
		allowed[strings.TrimSpace(origin)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
