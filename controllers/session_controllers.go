package controllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/cuetracker/billiard-app/ai"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/services"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SessionController struct {
	DB      *gorm.DB
	Service *services.SessionService
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{
		DB:      db,
		Service: services.NewSessionService(db),
	}
}

// StartSession -> begins billing on an available table
func (sc *SessionController) StartSession(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		CustomerID *uint `json:"customer_id"`
	}
	// body is optional, walk-in sessions carry no customer
	_ = c.ShouldBindJSON(&req)

	if req.CustomerID != nil {
		var customer models.Customer
		if err := sc.DB.First(&customer, *req.CustomerID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
			return
		}
	}

	table, err := sc.Service.Start(tableID, req.CustomerID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Session started on table %s", table.Name)
	utils.RespondJSON(c, http.StatusOK, "Session started", table)
}

// PauseSession -> freezes the timer, folding the running segment into elapsed_time
func (sc *SessionController) PauseSession(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}

	table, err := sc.Service.Pause(tableID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session paused", table)
}

// ResumeSession -> restarts the timer on a paused table
func (sc *SessionController) ResumeSession(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}

	table, err := sc.Service.Resume(tableID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session resumed", table)
}

// AddSessionItem -> orders a product onto the running session tab.
// Re-ordering the same product merges into one line with the quantity bumped.
func (sc *SessionController) AddSessionItem(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := sc.Service.AddItem(tableID, req.ProductID, req.Quantity)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item added to session", item)
}

// RemoveSessionItem -> drops a product line from the session tab
func (sc *SessionController) RemoveSessionItem(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}
	productID, ok := paramUint(c, "product_id")
	if !ok {
		return
	}

	if err := sc.Service.RemoveItem(tableID, productID); err != nil {
		respondSessionError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item removed from session", nil)
}

// Checkout -> settles the session: cuts the bill, decrements stock,
// settles the customer and frees the table, all in one transaction.
func (sc *SessionController) Checkout(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		PaymentMethod string   `json:"payment_method" binding:"required"`
		AmountPaid    *float64 `json:"amount_paid"`
		Notes         string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	staffID := currentUserID(c)

	bill, err := sc.Service.Checkout(tableID, services.CheckoutOptions{
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		Notes:         req.Notes,
		StaffID:       staffID,
	})
	if err != nil {
		respondSessionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Checkout completed: %s total=%s method=%s",
		bill.Number, utils.FormatCurrencyINR(bill.TotalAmount), bill.PaymentMethod)
	utils.RespondJSON(c, http.StatusOK, "Checkout completed", bill)
}

// SuggestNotes -> asks the model for a one-line bill note based on the
// session shape. Purely advisory; checkout never depends on it.
func (sc *SessionController) SuggestNotes(c *gin.Context) {
	tableID, ok := paramUint(c, "table_id")
	if !ok {
		return
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("note suggestion is not configured"))
		return
	}

	var table models.Table
	if err := sc.DB.Preload("SessionItems").Preload("SessionItems.Product").
		First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	if table.Status != models.TableInUse && table.Status != models.TablePaused {
		utils.RespondError(c, http.StatusConflict, errors.New("table has no active session"))
		return
	}

	elapsed := services.DisplayedElapsed(&table, sc.Service.Now())
	names := make([]string, 0, len(table.SessionItems))
	for _, item := range table.SessionItems {
		names = append(names, strconv.Itoa(item.Quantity)+"x "+item.Product.Name)
	}

	suggestion, err := ai.SuggestSessionNotes(c.Request.Context(), apiKey, elapsed/60, strings.Join(names, ", "))
	if err != nil {
		utils.ErrorLogger.Printf("Note suggestion failed for table %d: %v", table.ID, err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("note suggestion unavailable"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Note suggestion", gin.H{"suggestion": suggestion})
}

// respondSessionError maps service errors onto HTTP statuses.
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrStockInconsistency):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrMemberRequired),
		errors.Is(err, services.ErrInsufficientHours),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidPayment):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
