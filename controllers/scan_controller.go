package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quickscan-service/engine"
	"quickscan-service/history"
	"quickscan-service/logger"
	"quickscan-service/middlewares"
	"quickscan-service/models"
	"quickscan-service/rabbitmq"
	"quickscan-service/scanner"
	"quickscan-service/session"
	"quickscan-service/storage"
)

var (
	eng               *engine.Engine
	scanAdapter       *scanner.Adapter
	ledger            *history.Ledger
	counters          *session.Counters
	rabbitMQ          *rabbitmq.RabbitMQ
	paymentCheckDelay = 15 * time.Minute
)

func SetEngine(e *engine.Engine)         { eng = e }
func SetScanner(a *scanner.Adapter)      { scanAdapter = a }
func SetHistory(l *history.Ledger)       { ledger = l }
func SetSession(c *session.Counters)     { counters = c }
func SetRabbitMQ(rmq *rabbitmq.RabbitMQ) { rabbitMQ = rmq }

func SetPaymentCheckDelay(d time.Duration) {
	if d > 0 {
		paymentCheckDelay = d
	}
}

func logPublishFailure(eventType, orderID string, err error) {
	logger.GetLogger().Warn("failed to publish fulfillment event",
		zap.String("type", eventType),
		zap.String("order_id", orderID),
		zap.Error(err))
}

type scanRequest struct {
	Code string `json:"code" binding:"required"`
	Mode string `json:"mode" binding:"required,oneof=create_order direct_sell"`
}

// Scan runs one fulfillment for an externally submitted code (USB
// wedge front ends post here; camera detections come in through the
// adapter instead).
func Scan(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("scan", success)
	}()

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := eng.ResolveAndFulfill(c.Request.Context(), req.Code, engine.Mode(req.Mode))
	if err != nil {
		status, msg := mapFulfillmentError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	success = true

	c.JSON(http.StatusOK, result)

	// Events go out only after the fulfillment stands.
	if rabbitMQ != nil && result.Order != nil {
		publishOrderEvents(*result.Order)
	}
}

func mapFulfillmentError(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrUnauthenticated):
		return http.StatusUnauthorized, "User not authenticated"
	case errors.Is(err, engine.ErrOutOfStock):
		return http.StatusConflict, err.Error()
	case errors.Is(err, engine.ErrProductNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, engine.ErrProvisioningFailed):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable, "Storage unavailable"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func publishOrderEvents(order models.Order) {
	productID := ""
	if len(order.Items) > 0 {
		productID = order.Items[0].Product.ID
	}

	priority := 5
	if order.HasWinEligibleItems {
		priority = 9
	}

	if err := rabbitMQ.PublishOrderEvent(order.ID, productID, priority, "created"); err != nil {
		logPublishFailure("created", order.ID, err)
	}
	if err := rabbitMQ.PublishDelayedEvent(order.ID, paymentCheckDelay, "payment_check"); err != nil {
		logPublishFailure("payment_check", order.ID, err)
	}
}

// StartScanner opens a capture session on the configured device.
func StartScanner(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("scanner_start", success)
	}()

	if err := scanAdapter.Start(c.Request.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, scanner.ErrAlreadyScanning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	success = true
	middlewares.SetScannerActive(true)
	c.JSON(http.StatusOK, gin.H{"state": scanAdapter.State().String()})
}

// StopScanner ends the capture session. Stopping an idle scanner is
// fine and reports idle.
func StopScanner(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("scanner_stop", success)
	}()

	if err := scanAdapter.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	success = true
	middlewares.SetScannerActive(false)
	c.JSON(http.StatusOK, gin.H{"state": scanAdapter.State().String()})
}

// RestartScanner cycles the capture session with a settle delay.
func RestartScanner(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("scanner_restart", success)
	}()

	if err := scanAdapter.Restart(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	success = true
	middlewares.SetScannerActive(true)
	c.JSON(http.StatusOK, gin.H{"state": scanAdapter.State().String()})
}

func ScannerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": scanAdapter.State().String()})
}

func GetScanHistory(c *gin.Context) {
	codes, err := ledger.List()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func ClearScanHistory(c *gin.Context) {
	if err := ledger.Clear(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scan history cleared"})
}

func GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, counters.Snapshot())
}
