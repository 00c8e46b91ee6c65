package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// CreateCustomer -> registers a walk-in or member customer
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer := models.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Customer registered: %s %s", customer.FirstName, customer.LastName)
	utils.RespondJSON(c, http.StatusCreated, "Customer created successfully", customer)
}

// GetAllCustomers -> list with optional name/phone search
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	query := cc.DB.Preload("Membership")
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?", like, like, like)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// GetCustomerByID -> profile with membership and recent bills
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	customerID := c.Param("customer_id")

	var customer models.Customer
	if err := cc.DB.Preload("Membership").First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("customer %s not found", customerID))
		return
	}

	var bills []models.Bill
	if err := cc.DB.Where("customer_id = ?", customer.ID).
		Order("bill_date DESC").Limit(20).Find(&bills).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer detail", gin.H{
		"customer":     customer,
		"recent_bills": bills,
	})
}

// UpdateCustomer
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("customer %s not found", customerID))
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Nothing to update", customer)
		return
	}

	if err := cc.DB.Model(&customer).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer updated successfully", customer)
}

// AssignMembership -> sells a membership plan to a customer. Remaining
// hours from an unexpired plan carry over on renewal.
func (cc *CustomerController) AssignMembership(c *gin.Context) {
	customerID := c.Param("customer_id")
	var req struct {
		MembershipID uint `json:"membership_id" binding:"required"`
		ValidityDays int  `json:"validity_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.ValidityDays <= 0 {
		req.ValidityDays = 30
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("customer %s not found", customerID))
		return
	}

	var plan models.Membership
	if err := cc.DB.First(&plan, req.MembershipID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("membership plan not found"))
		return
	}

	now := time.Now()
	hours := plan.TotalHours
	if customer.ValidTill != nil && customer.ValidTill.After(now) {
		hours += customer.RemainingHours
	}
	validTill := now.AddDate(0, 0, req.ValidityDays)

	if err := cc.DB.Model(&customer).Updates(map[string]interface{}{
		"membership_id":   plan.ID,
		"remaining_hours": hours,
		"valid_from":      now,
		"valid_till":      validTill,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := cc.DB.Preload("Membership").First(&customer, customer.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Membership %s assigned to customer %d (%.1f hours, valid till %s)",
		plan.Name, customer.ID, hours, validTill.Format("2006-01-02"))
	utils.RespondJSON(c, http.StatusOK, "Membership assigned", customer)
}

// DeleteCustomer -> refused while the customer owns a running session
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")

	var customer models.Customer
	if err := cc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("customer %s not found", customerID))
		return
	}

	var active int64
	if err := cc.DB.Model(&models.Table{}).
		Where("customer_id = ? AND status IN ?", customer.ID,
			[]string{models.TableInUse, models.TablePaused}).
		Count(&active).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if active > 0 {
		utils.RespondError(c, http.StatusConflict,
			errors.New("customer has an active session and cannot be deleted"))
		return
	}

	if err := cc.DB.Delete(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer deleted successfully", nil)
}
