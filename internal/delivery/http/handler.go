package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/logger"
	"github.com/planachat/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// ProductExtractService is the use case behind the extraction endpoint
type ProductExtractService interface {
	Extract(ctx context.Context, request *domain.ExtractRequest) (*usecase.ExtractResult, error)
}

// SiteLister lists the retailers with a dedicated extraction recipe
type SiteLister interface {
	Keys() []string
}

// HandlerConfig holds handler settings
type HandlerConfig struct {
	ExtractTimeout time.Duration
	Logger         logger.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products       ProductExtractService
	sites          SiteLister
	extractTimeout time.Duration
	log            logger.Logger
}

// NewHandler creates a new HTTP handler. products may be nil, in which case
// the extraction endpoint answers 503.
func NewHandler(products ProductExtractService, sites SiteLister, config HandlerConfig) *Handler {
	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}
	timeout := config.ExtractTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Handler{
		products:       products,
		sites:          sites,
		extractTimeout: timeout,
		log:            log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "planachat-backend",
		"version": Version,
	})
}

// ExtractProduct handles product extraction requests
// POST /api/v1/products/extract
func (h *Handler) ExtractProduct(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Service d'extraction indisponible",
		})
		return
	}

	var req domain.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Requête invalide : le champ \"url\" est obligatoire",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.extractTimeout)
	defer cancel()

	result, err := h.products.Extract(ctx, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Requête invalide : le champ \"url\" est obligatoire",
			})
			return
		}

		h.log.Error("Product extraction error",
			logger.String("request_id", requestIDFrom(c)),
			logger.String("url", req.URL),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Erreur interne du serveur",
		})
		return
	}

	if !result.Outcome.Success() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   result.Outcome.Reason(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": result.Outcome.Product,
		"cached":  result.Cached,
	})
}

// ListSites returns the retailers with a dedicated extraction recipe
// GET /api/v1/products/sites
func (h *Handler) ListSites(c *gin.Context) {
	sites := []string{}
	if h.sites != nil {
		sites = append(sites, h.sites.Keys()...)
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}
