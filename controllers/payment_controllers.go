package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cuetracker/billiard-app/services"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentController struct {
	DB      *gorm.DB
	Service *services.PaymentService
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{
		DB:      db,
		Service: services.NewPaymentService(db),
	}
}

// RecordPayment -> takes a balance top-up from a customer. The ledger
// entry and the balance increment commit together.
func (pc *PaymentController) RecordPayment(c *gin.Context) {
	var req struct {
		CustomerID uint    `json:"customer_id" binding:"required"`
		Amount     float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.Service.RecordPayment(req.CustomerID, req.Amount, currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.InfoLogger.Printf("Payment recorded: customer=%d amount=%s",
		payment.CustomerID, utils.FormatCurrencyINR(payment.Amount))
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}

// ListPayments -> full ledger, or one customer's with ?customer_id=
func (pc *PaymentController) ListPayments(c *gin.Context) {
	var customerID *uint
	if raw := c.Query("customer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid customer_id"))
			return
		}
		v := uint(id)
		customerID = &v
	}

	payments, err := pc.Service.ListPayments(customerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}
