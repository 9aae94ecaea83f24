package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quickscan-service/catalog"
	"quickscan-service/middlewares"
	"quickscan-service/models"
)

var catalogStore *catalog.Store

func SetCatalog(s *catalog.Store) { catalogStore = s }

func ListProducts(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("list_products", success)
	}()

	products, err := catalogStore.GetAll()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	success = true
	c.JSON(http.StatusOK, products)
}

// UpsertProduct creates or replaces a catalog record. A missing ID gets
// a fresh one.
func UpsertProduct(c *gin.Context) {
	success := false
	defer func() {
		middlewares.RecordOperation("upsert_product", success)
	}()

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if product.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must not be negative"})
		return
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if err := catalogStore.Upsert(product); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	success = true
	c.JSON(http.StatusCreated, product)
}
