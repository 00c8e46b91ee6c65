package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/controllers"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
)

func setupTestDBForSessions(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Table{}, &models.SessionItem{}, &models.ProductCategory{}, &models.Product{},
		&models.Customer{}, &models.Bill{}, &models.BillItem{}, &models.Notification{},
	))
	return db
}

func setupSessionRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	sessionCtrl := controllers.NewSessionController(db)
	router.POST("/tables/:table_id/start", sessionCtrl.StartSession)
	router.POST("/tables/:table_id/pause", sessionCtrl.PauseSession)
	router.POST("/tables/:table_id/resume", sessionCtrl.ResumeSession)
	router.POST("/tables/:table_id/checkout", sessionCtrl.Checkout)
	router.POST("/tables/:table_id/items", sessionCtrl.AddSessionItem)
	router.DELETE("/tables/:table_id/items/:product_id", sessionCtrl.RemoveSessionItem)
	router.POST("/tables/:table_id/suggest-notes", sessionCtrl.SuggestNotes)
	return router
}

func postJSON(router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req, _ := http.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartSessionEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableAvailable}
	db.Create(&table)

	router := setupSessionRouter(db)
	w := postJSON(router, fmt.Sprintf("/tables/%d/start", table.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Table
	assert.NoError(t, db.First(&got, table.ID).Error)
	assert.Equal(t, models.TableInUse, got.Status)
	assert.NotZero(t, got.StartTime)
}

func TestStartSessionConflict(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	db.Create(&table)

	router := setupSessionRouter(db)
	w := postJSON(router, fmt.Sprintf("/tables/%d/start", table.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStartSessionUnknownCustomer(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	table := models.Table{Name: "T1", Status: models.TableAvailable}
	db.Create(&table)

	router := setupSessionRouter(db)
	w := postJSON(router, fmt.Sprintf("/tables/%d/start", table.ID),
		map[string]interface{}{"customer_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPauseResumeEndpoints(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	table := models.Table{Name: "T1", Status: models.TableAvailable}
	db.Create(&table)

	router := setupSessionRouter(db)
	assert.Equal(t, http.StatusOK, postJSON(router, fmt.Sprintf("/tables/%d/start", table.ID), nil).Code)
	assert.Equal(t, http.StatusOK, postJSON(router, fmt.Sprintf("/tables/%d/pause", table.ID), nil).Code)
	// double pause is a conflict
	assert.Equal(t, http.StatusConflict, postJSON(router, fmt.Sprintf("/tables/%d/pause", table.ID), nil).Code)
	assert.Equal(t, http.StatusOK, postJSON(router, fmt.Sprintf("/tables/%d/resume", table.ID), nil).Code)
}

func TestAddItemEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)
	product := models.Product{Name: "Cola", Price: 40, Stock: 10, CategoryID: category.ID}
	db.Create(&product)
	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	db.Create(&table)

	router := setupSessionRouter(db)
	w := postJSON(router, fmt.Sprintf("/tables/%d/items", table.ID),
		map[string]interface{}{"product_id": product.ID, "quantity": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	var item models.SessionItem
	assert.NoError(t, db.Where("table_id = ?", table.ID).First(&item).Error)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 40.0, item.UnitPrice)

	// unknown product
	w = postJSON(router, fmt.Sprintf("/tables/%d/items", table.ID),
		map[string]interface{}{"product_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bad quantity
	w = postJSON(router, fmt.Sprintf("/tables/%d/items", table.ID),
		map[string]interface{}{"product_id": product.ID, "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	table := models.Table{
		Name:             "T1",
		HourlyRate:       10,
		Status:           models.TablePaused,
		ElapsedTime:      3600,
		SessionStartTime: time.Now().Add(-time.Hour).UnixMilli(),
	}
	db.Create(&table)

	router := setupSessionRouter(db)
	w := postJSON(router, fmt.Sprintf("/tables/%d/checkout", table.ID),
		map[string]interface{}{"payment_method": "cash"})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Checkout completed", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, 10.0, data["total_amount"])

	var got models.Table
	assert.NoError(t, db.First(&got, table.ID).Error)
	assert.Equal(t, models.TableAvailable, got.Status)
}

func TestCheckoutEndpointBadMethod(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	table := models.Table{Name: "T1", Status: models.TablePaused, ElapsedTime: 60}
	db.Create(&table)

	router := setupSessionRouter(db)
	w := postJSON(router, fmt.Sprintf("/tables/%d/checkout", table.ID),
		map[string]interface{}{"payment_method": "cheque"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveItemEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)

	category := models.ProductCategory{Name: "Drinks"}
	db.Create(&category)
	product := models.Product{Name: "Cola", Price: 40, Stock: 10, CategoryID: category.ID}
	db.Create(&product)
	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	db.Create(&table)
	db.Create(&models.SessionItem{TableID: table.ID, ProductID: product.ID, Quantity: 1, UnitPrice: 40})

	router := setupSessionRouter(db)
	url := fmt.Sprintf("/tables/%d/items/%d", table.ID, product.ID)
	req, _ := http.NewRequest("DELETE", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.SessionItem{}).Where("table_id = ?", table.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSuggestNotesEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForSessions(t)
	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	db.Create(&table)

	router := setupSessionRouter(db)

	// without an API key the endpoint reports itself unconfigured
	t.Setenv("GEMINI_API_KEY", "")
	w := postJSON(router, fmt.Sprintf("/tables/%d/suggest-notes", table.ID), nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// with a key but no active session it refuses before calling out
	t.Setenv("GEMINI_API_KEY", "test-key")
	idle := models.Table{Name: "T2", Status: models.TableAvailable}
	db.Create(&idle)
	w = postJSON(router, fmt.Sprintf("/tables/%d/suggest-notes", idle.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
