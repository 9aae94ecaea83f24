package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickscan-service/middlewares"
	"quickscan-service/models"
	"quickscan-service/orders"
)

var orderCollection *orders.Collection

func SetOrders(c *orders.Collection) { orderCollection = c }

func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// GetUserOrders lists the caller's orders, newest first.
func GetUserOrders(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("list_orders", success)
	}()

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	list, err := orderCollection.ListByUser(user.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	success = true
	c.JSON(http.StatusOK, list)
}

func GetOrderDetails(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("order_details", success)
	}()

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	order, err := orderCollection.Get(c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	success = true
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus edits an order's status. This is dashboard
// bookkeeping outside the fulfillment pipeline; orders stay otherwise
// immutable.
func UpdateOrderStatus(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("update_status", success)
	}()

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderID := c.Param("id")

	var request struct {
		Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := orderCollection.UpdateStatus(orderID, user.ID, request.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or not authorized"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	success = true

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": orderID})

	if rabbitMQ != nil {
		priority := 5
		if request.Status == models.StatusCancelled {
			priority = 8
		}
		if err := rabbitMQ.PublishOrderEvent(orderID, "", priority, "status_updated"); err != nil {
			logPublishFailure("status_updated", orderID, err)
		}
	}
}
