package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/models"
)

var ErrInvalidAmount = errors.New("payment amount must be positive")

// PaymentService records balance top-ups. A top-up is its own atomic
// operation: the ledger entry and the balance increment commit
// together or not at all. It shares the atomicity contract with
// checkout but never its code path.
type PaymentService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{
		DB:  db,
		Now: time.Now,
	}
}

// RecordPayment writes the ledger entry and credits the customer.
func (s *PaymentService) RecordPayment(customerID uint, amount float64, staffID uint) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	payment := models.Payment{
		CustomerID:  customerID,
		Amount:      amount,
		PaymentDate: s.Now(),
		StaffID:     staffID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := lockForUpdate(tx).First(&customer, customerID).Error; err != nil {
			return err
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&customer).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPayments returns the ledger, optionally for one customer.
func (s *PaymentService) ListPayments(customerID *uint) ([]models.Payment, error) {
	var payments []models.Payment
	q := s.DB.Order("payment_date DESC")
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
