package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/controllers"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
)

func setupTestDBForProducts(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ProductCategory{}, &models.Product{}, &models.SessionItem{},
	))
	return db
}

func setupProductRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	productCtrl := controllers.NewProductController(db)
	categoryCtrl := controllers.NewProductCategoryController(db)
	router.GET("/products", productCtrl.GetAllProducts)
	router.POST("/products", productCtrl.CreateProduct)
	router.POST("/products/:product_id/stock", productCtrl.AdjustStock)
	router.DELETE("/products/:product_id", productCtrl.DeleteProduct)
	router.POST("/categories", categoryCtrl.CreateCategory)
	router.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)
	return router
}

func TestCreateProduct(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForProducts(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)

	router := setupProductRouter(db)
	payload := map[string]interface{}{
		"name": "Cola", "price": 40.0, "stock": 24, "category_id": category.ID,
	}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var product models.Product
	assert.NoError(t, db.Where("name = ?", "Cola").First(&product).Error)
	assert.Equal(t, 24, product.Stock)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForProducts(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)

	router := setupProductRouter(db)
	payload := map[string]interface{}{
		"name": "Cola", "price": -5.0, "category_id": category.ID,
	}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustStock(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForProducts(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)
	product := models.Product{Name: "Cola", Price: 40, Stock: 10, CategoryID: category.ID}
	db.Create(&product)

	router := setupProductRouter(db)

	payload, _ := json.Marshal(map[string]int{"delta": -4})
	url := fmt.Sprintf("/products/%d/stock", product.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Product
	assert.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, 6, got.Stock)

	// going below zero is refused
	payload, _ = json.Marshal(map[string]int{"delta": -10})
	req, _ = http.NewRequest("POST", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, 6, got.Stock)
}

func TestDeleteProductOnOpenTab(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForProducts(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)
	product := models.Product{Name: "Cola", Price: 40, Stock: 10, CategoryID: category.ID}
	db.Create(&product)
	db.Create(&models.SessionItem{TableID: 1, ProductID: product.ID, Quantity: 1, UnitPrice: 40})

	router := setupProductRouter(db)
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/products/%d", product.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForProducts(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)
	db.Create(&models.Product{Name: "Cola", Price: 40, CategoryID: category.ID})

	router := setupProductRouter(db)
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/categories/%d", category.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}
