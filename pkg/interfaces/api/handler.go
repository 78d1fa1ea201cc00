package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/kitchenplan/pkg/application/dto"
	"github.com/vsinha/kitchenplan/pkg/application/services/delivery"
	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// OrganizationHeader carries the caller's organization on every request
const OrganizationHeader = "X-Organization-ID"

type DemandService interface {
	CalculateEventDemand(ctx context.Context, eventID, organizationID string) ([]entities.DemandLine, error)
}

type ProcurementService interface {
	GenerateFromEventDetailed(ctx context.Context, eventID, organizationID string) (*dto.GenerationResult, error)
	CheckStockAvailability(ctx context.Context, eventID, organizationID string) (*dto.StockAvailability, error)
}

type DeliveryService interface {
	EstimateDeliveryDate(ctx context.Context, supplierID string, orderInstant time.Time) (time.Time, error)
	Now() time.Time
}

// Handler exposes the planning services over HTTP
type Handler struct {
	demand      DemandService
	procurement ProcurementService
	delivery    DeliveryService
	log         logrus.FieldLogger
}

// NewHandler creates a new API handler
func NewHandler(demand DemandService, procurement ProcurementService, delivery DeliveryService, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		demand:      demand,
		procurement: procurement,
		delivery:    delivery,
		log:         log.WithField("component", "http"),
	}
}

// NewRouter builds a gin engine with the API routes and request logging
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	h.SetupRoutes(router)
	return router
}

// SetupRoutes configures all API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		events := api.Group("/events", requireOrganization)
		events.GET("/:id/demand", h.GetEventDemand)
		events.POST("/:id/purchase-orders", h.GeneratePurchaseOrders)
		events.GET("/:id/stock-check", h.CheckStock)

		api.GET("/suppliers/:id/delivery-estimate", h.EstimateDelivery)
	}
}

func requireOrganization(c *gin.Context) {
	if c.GetHeader(OrganizationHeader) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + OrganizationHeader + " header"})
		return
	}
	c.Next()
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request handled")
	}
}

// GetEventDemand returns the buffered ingredient demand of an event
func (h *Handler) GetEventDemand(c *gin.Context) {
	eventID := c.Param("id")
	orgID := c.GetHeader(OrganizationHeader)

	lines, err := h.demand.CalculateEventDemand(c.Request.Context(), eventID, orgID)
	if err != nil {
		h.writeError(c, err, "Failed to calculate demand")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id": eventID,
		"demand":   lines,
	})
}

// GeneratePurchaseOrders creates draft purchase orders for an event.
// Partial success answers 207 with the failure report.
func (h *Handler) GeneratePurchaseOrders(c *gin.Context) {
	eventID := c.Param("id")
	orgID := c.GetHeader(OrganizationHeader)

	result, err := h.procurement.GenerateFromEventDetailed(c.Request.Context(), eventID, orgID)
	if err != nil {
		h.writeError(c, err, "Failed to generate purchase orders")
		return
	}

	status := http.StatusCreated
	if result.HasFailures() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

// CheckStock reports ingredients whose stock does not cover the event's demand
func (h *Handler) CheckStock(c *gin.Context) {
	eventID := c.Param("id")
	orgID := c.GetHeader(OrganizationHeader)

	report, err := h.procurement.CheckStockAvailability(c.Request.Context(), eventID, orgID)
	if err != nil {
		h.writeError(c, err, "Failed to check stock")
		return
	}

	c.JSON(http.StatusOK, report)
}

// EstimateDelivery dates an order placed with a supplier at ?at=RFC3339, defaulting to now
func (h *Handler) EstimateDelivery(c *gin.Context) {
	supplierID := c.Param("id")

	orderInstant := h.delivery.Now()
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid at parameter, expected RFC3339"})
			return
		}
		orderInstant = parsed
	}

	date, err := h.delivery.EstimateDeliveryDate(c.Request.Context(), supplierID, orderInstant)
	if err != nil {
		h.writeError(c, err, "Failed to estimate delivery date")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"supplier_id":   supplierID,
		"order_instant": orderInstant,
		"delivery_date": date.Format("2006-01-02"),
	})
}

func (h *Handler) writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, delivery.ErrNoDeliveryDays):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(499)
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
