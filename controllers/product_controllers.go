package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cuetracker/billiard-app/floor"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/services"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

// CreateProduct -> adds a product to the counter inventory
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req struct {
		Name       string  `json:"name" binding:"required"`
		Price      float64 `json:"price" binding:"required"`
		Stock      int     `json:"stock"`
		CategoryID uint    `json:"category_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price < 0 || req.Stock < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price and stock must not be negative"))
		return
	}

	var category models.ProductCategory
	if err := pc.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	product := models.Product{
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
	}

	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Product created: %s (price=%.2f stock=%d)", product.Name, product.Price, product.Stock)
	utils.RespondJSON(c, http.StatusCreated, "Product created successfully", product)
}

// GetAllProducts -> lists products, optionally filtered by category
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	query := pc.DB.Preload("Category")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// GetProductByID
func (pc *ProductController) GetProductByID(c *gin.Context) {
	productID := c.Param("product_id")

	var product models.Product
	if err := pc.DB.Preload("Category").First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("product %s not found", productID))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// UpdateProduct -> edits name, price or category. Stock moves through
// AdjustStock so every change is an explicit delta.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	productID := c.Param("product_id")
	var req struct {
		Name       *string  `json:"name"`
		Price      *float64 `json:"price"`
		CategoryID *uint    `json:"category_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("product %s not found", productID))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
			return
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		var category models.ProductCategory
		if err := pc.DB.First(&category, *req.CategoryID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Nothing to update", product)
		return
	}

	if err := pc.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product updated successfully", product)
}

// AdjustStock -> applies a signed delta to stock. The guard in the WHERE
// clause stops a concurrent adjustment from taking stock negative.
func (pc *ProductController) AdjustStock(c *gin.Context) {
	productID := c.Param("product_id")
	var req struct {
		Delta int `json:"delta" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("product %s not found", productID))
		return
	}

	result := pc.DB.Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", product.ID, req.Delta).
		Update("stock", gorm.Expr("stock + ?", req.Delta))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("adjustment would take stock negative"))
		return
	}

	if err := pc.DB.First(&product, product.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if product.Stock <= services.LowStockThreshold {
		floor.BroadcastStockLow(product)
	}

	utils.InfoLogger.Printf("Stock adjusted: %s delta=%d now=%d", product.Name, req.Delta, product.Stock)
	utils.RespondJSON(c, http.StatusOK, "Stock adjusted", product)
}

// DeleteProduct -> removes a product from the catalogue. Historical
// bill items keep their snapshot of the name and price.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	productID := c.Param("product_id")

	var product models.Product
	if err := pc.DB.First(&product, productID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("product %s not found", productID))
		return
	}

	var onTabs int64
	if err := pc.DB.Model(&models.SessionItem{}).
		Where("product_id = ?", product.ID).Count(&onTabs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if onTabs > 0 {
		utils.RespondError(c, http.StatusConflict,
			errors.New("product is on an open session tab and cannot be deleted"))
		return
	}

	if err := pc.DB.Delete(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Product deleted: %s", product.Name)
	utils.RespondJSON(c, http.StatusOK, "Product deleted successfully", nil)
}
