package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductCategoryController struct {
	DB *gorm.DB
}

func NewProductCategoryController(db *gorm.DB) *ProductCategoryController {
	return &ProductCategoryController{DB: db}
}

// CreateCategory
func (cc *ProductCategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.ProductCategory{Name: req.Name}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", category)
}

// GetAllCategories
func (cc *ProductCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.ProductCategory
	if err := cc.DB.Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// UpdateCategory
func (cc *ProductCategoryController) UpdateCategory(c *gin.Context) {
	categoryID := c.Param("category_id")
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.ProductCategory
	if err := cc.DB.First(&category, categoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("category %s not found", categoryID))
		return
	}

	if err := cc.DB.Model(&category).Update("name", req.Name).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory -> refused while any product still points at it
func (cc *ProductCategoryController) DeleteCategory(c *gin.Context) {
	categoryID := c.Param("category_id")

	var category models.ProductCategory
	if err := cc.DB.First(&category, categoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("category %s not found", categoryID))
		return
	}

	var inUse int64
	if err := cc.DB.Model(&models.Product{}).
		Where("category_id = ?", category.ID).Count(&inUse).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if inUse > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has products"))
		return
	}

	if err := cc.DB.Delete(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted successfully", nil)
}
