package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cuetracker/billiard-app/floor"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
)

var (
	ErrInvalidTransition  = errors.New("invalid session transition")
	ErrProductNotFound    = errors.New("product not found")
	ErrStockInconsistency = errors.New("insufficient stock for session item")
	ErrMemberRequired     = errors.New("member payment requires an attached customer")
	ErrInsufficientHours  = errors.New("customer has insufficient membership hours")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrInvalidPayment     = errors.New("unknown payment method")
)

// How many times a checkout is retried when the database reports a
// write conflict before the error is surfaced to staff.
const checkoutRetries = 3

// LowStockThreshold triggers a floor warning after checkout.
const LowStockThreshold = 5

// SessionService owns the per-table session state machine. All store
// writes happen on status transitions or item changes; the ticking
// display is derived client-side from the persisted record, so write
// volume stays bounded by transitions, not wall-clock seconds.
type SessionService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{
		DB:  db,
		Now: time.Now,
	}
}

// CheckoutOptions carries the staff input from the end-session dialog.
// AmountPaid defaults to the computed total when nil (cash/upi) and to
// zero for member checkouts.
type CheckoutOptions struct {
	PaymentMethod string
	Notes         string
	StaffID       uint
	AmountPaid    *float64
}

// Start opens a session: available -> in-use. Timer fields and the
// item list are reset so nothing leaks in from a previous session.
func (s *SessionService) Start(tableID uint, customerID *uint) (*models.Table, error) {
	table, err := s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status != models.TableAvailable {
		return nil, fmt.Errorf("%w: cannot start a table that is %s", ErrInvalidTransition, table.Status)
	}

	nowMs := s.Now().UnixMilli()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Table{}).
			Where("id = ? AND status = ?", tableID, models.TableAvailable).
			Updates(map[string]interface{}{
				"status":             models.TableInUse,
				"start_time":         nowMs,
				"session_start_time": nowMs,
				"elapsed_time":       0,
				"last_paused_time":   nil,
				"customer_id":        customerID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another terminal got there first.
			return fmt.Errorf("%w: table is no longer available", ErrInvalidTransition)
		}
		return tx.Where("table_id = ?", tableID).Delete(&models.SessionItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	table, err = s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	floor.BroadcastTableUpdate(*table)
	utils.InfoLogger.Printf("Session started on table %d (%s)", table.ID, table.Name)
	return table, nil
}

// Pause folds the running segment into ElapsedTime: in-use -> paused.
// StartTime is zeroed so the segment can never be counted twice.
func (s *SessionService) Pause(tableID uint) (*models.Table, error) {
	table, err := s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status != models.TableInUse {
		return nil, fmt.Errorf("%w: cannot pause a table that is %s", ErrInvalidTransition, table.Status)
	}

	now := s.Now()
	newElapsed := DisplayedElapsed(table, now)
	nowMs := now.UnixMilli()

	res := s.DB.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableInUse).
		Updates(map[string]interface{}{
			"status":           models.TablePaused,
			"elapsed_time":     newElapsed,
			"last_paused_time": nowMs,
			"start_time":       0,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: table is no longer in use", ErrInvalidTransition)
	}

	table, err = s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	floor.BroadcastTableUpdate(*table)
	utils.InfoLogger.Printf("Session paused on table %d at %ds billed", table.ID, table.ElapsedTime)
	return table, nil
}

// Resume restarts the timer: paused -> in-use. ElapsedTime is left
// alone, it already holds every completed segment.
func (s *SessionService) Resume(tableID uint) (*models.Table, error) {
	table, err := s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status != models.TablePaused {
		return nil, fmt.Errorf("%w: cannot resume a table that is %s", ErrInvalidTransition, table.Status)
	}

	res := s.DB.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TablePaused).
		Updates(map[string]interface{}{
			"status":           models.TableInUse,
			"start_time":       s.Now().UnixMilli(),
			"last_paused_time": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: table is no longer paused", ErrInvalidTransition)
	}

	table, err = s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	floor.BroadcastTableUpdate(*table)
	return table, nil
}

// AddItem merges a product into the session items, keyed by product
// id. The product price at add time is what gets billed.
func (s *SessionService) AddItem(tableID, productID uint, quantity int) (*models.SessionItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	table, err := s.getTable(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableAvailable || table.Status == models.TableOutOfService {
		return nil, fmt.Errorf("%w: no open session on this table", ErrInvalidTransition)
	}

	var item models.SessionItem
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		err := tx.Where("table_id = ? AND product_id = ?", tableID, productID).First(&item).Error
		switch {
		case err == nil:
			res := tx.Model(&item).UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
			if res.Error != nil {
				return res.Error
			}
			item.Quantity += quantity
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.SessionItem{
				TableID:   tableID,
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: product.Price,
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	if t, err := s.getTable(tableID); err == nil {
		floor.BroadcastTableUpdate(*t)
	}
	return &item, nil
}

// RemoveItem drops the entry matching the product id, if any.
func (s *SessionService) RemoveItem(tableID, productID uint) error {
	table, err := s.getTable(tableID)
	if err != nil {
		return err
	}
	if table.Status == models.TableAvailable || table.Status == models.TableOutOfService {
		return fmt.Errorf("%w: no open session on this table", ErrInvalidTransition)
	}

	if err := s.DB.Where("table_id = ? AND product_id = ?", tableID, productID).
		Delete(&models.SessionItem{}).Error; err != nil {
		return err
	}

	if t, err := s.getTable(tableID); err == nil {
		floor.BroadcastTableUpdate(*t)
	}
	return nil
}

// Checkout finalizes the session into an immutable bill: create the
// bill with its item snapshot, decrement stock, settle the customer
// and reset the table, all inside one transaction. A checkout from
// in-use bills up to the current instant. On any failure the table
// keeps its state, time and items intact so staff can retry.
func (s *SessionService) Checkout(tableID uint, opts CheckoutOptions) (*models.Bill, error) {
	switch opts.PaymentMethod {
	case models.PaymentCash, models.PaymentUPI, models.PaymentMember:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayment, opts.PaymentMethod)
	}

	var bill models.Bill
	var err error
	for attempt := 0; attempt < checkoutRetries; attempt++ {
		bill = models.Bill{}
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			return s.checkoutTx(tx, tableID, opts, &bill)
		})
		if err == nil || !isRetryableTxError(err) {
			break
		}
		utils.ErrorLogger.Printf("Checkout conflict on table %d (attempt %d): %v", tableID, attempt+1, err)
	}
	if err != nil {
		return nil, err
	}

	// Post-commit side effects only. None of these can undo the bill.
	floor.BroadcastBillCreated(bill)
	if table, gerr := s.getTable(tableID); gerr == nil {
		floor.BroadcastTableUpdate(*table)
	}
	s.warnLowStock(bill)
	utils.InfoLogger.Printf("Bill %s committed for table %d: total %.2f (%s)",
		bill.Number, tableID, bill.TotalAmount, bill.PaymentMethod)
	return &bill, nil
}

func (s *SessionService) checkoutTx(tx *gorm.DB, tableID uint, opts CheckoutOptions, bill *models.Bill) error {
	// Read the table inside the transaction so an item added by
	// another terminal after our caller looked is still billed.
	var table models.Table
	if err := lockForUpdate(tx).
		Preload("SessionItems").
		Preload("SessionItems.Product").
		First(&table, tableID).Error; err != nil {
		return err
	}

	if table.Status != models.TablePaused && table.Status != models.TableInUse {
		return fmt.Errorf("%w: cannot checkout a table that is %s", ErrInvalidTransition, table.Status)
	}

	now := s.Now()
	elapsed := DisplayedElapsed(&table, now)
	breakdown := ComputeBill(table.HourlyRate, elapsed, table.SessionItems)

	amountPaid := breakdown.Total
	if opts.PaymentMethod == models.PaymentMember {
		amountPaid = 0
	}
	if opts.AmountPaid != nil {
		amountPaid = *opts.AmountPaid
	}

	*bill = models.Bill{
		Number:        fmt.Sprintf("BILL/%s/%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8])),
		TableID:       table.ID,
		TableName:     table.Name,
		CustomerID:    table.CustomerID,
		BillDate:      now,
		TableBill:     breakdown.TableBill,
		ItemsBill:     breakdown.ItemsBill,
		TotalAmount:   breakdown.Total,
		AmountPaid:    amountPaid,
		PaymentMethod: opts.PaymentMethod,
		StaffID:       opts.StaffID,
		Notes:         opts.Notes,
		StartTime:     table.SessionStartTime,
		EndTime:       now.UnixMilli(),
		Duration:      elapsed,
	}
	if opts.PaymentMethod == models.PaymentMember {
		bill.HoursUsed = float64(elapsed) / 3600
	}
	for _, item := range table.SessionItems {
		bill.Items = append(bill.Items, models.BillItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice * float64(item.Quantity),
		})
	}
	if err := tx.Create(bill).Error; err != nil {
		return err
	}

	// Guarded decrement: the stock check and the write are a single
	// statement, so two concurrent checkouts cannot both pass.
	for _, item := range table.SessionItems {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
			}
			return fmt.Errorf("%w: product %d", ErrStockInconsistency, item.ProductID)
		}
	}

	if err := s.settleCustomer(tx, &table, opts.PaymentMethod, bill, amountPaid); err != nil {
		return err
	}

	// Reset the table for the next session.
	if err := tx.Model(&models.Table{}).Where("id = ?", table.ID).
		Updates(map[string]interface{}{
			"status":             models.TableAvailable,
			"start_time":         0,
			"session_start_time": 0,
			"elapsed_time":       0,
			"last_paused_time":   nil,
			"customer_id":        nil,
		}).Error; err != nil {
		return err
	}
	return tx.Where("table_id = ?", table.ID).Delete(&models.SessionItem{}).Error
}

// settleCustomer applies the customer-side effect of a checkout.
// Member checkouts debit table time from membership hours and item
// cost from the balance; cash/upi checkouts only touch the balance
// when the paid amount differs from the total.
func (s *SessionService) settleCustomer(tx *gorm.DB, table *models.Table, method string, bill *models.Bill, amountPaid float64) error {
	if method == models.PaymentMember {
		if table.CustomerID == nil {
			return ErrMemberRequired
		}
		var customer models.Customer
		if err := lockForUpdate(tx).
			First(&customer, *table.CustomerID).Error; err != nil {
			return err
		}

		if customer.RemainingHours < bill.HoursUsed {
			return fmt.Errorf("%w: has %.2fh, session used %.2fh", ErrInsufficientHours, customer.RemainingHours, bill.HoursUsed)
		}

		return tx.Model(&customer).Updates(map[string]interface{}{
			"remaining_hours": gorm.Expr("remaining_hours - ?", bill.HoursUsed),
			"balance":         gorm.Expr("balance - ?", bill.ItemsBill),
		}).Error
	}

	if table.CustomerID != nil && amountPaid != bill.TotalAmount {
		return tx.Model(&models.Customer{}).Where("id = ?", *table.CustomerID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amountPaid-bill.TotalAmount)).Error
	}
	return nil
}

func (s *SessionService) warnLowStock(bill models.Bill) {
	for _, item := range bill.Items {
		var product models.Product
		if err := s.DB.First(&product, item.ProductID).Error; err != nil {
			continue
		}
		if product.Stock < LowStockThreshold {
			floor.BroadcastStockLow(product)
			title := "Low stock"
			s.DB.Create(&models.Notification{
				Title:   &title,
				Message: fmt.Sprintf("%s is down to %d units", product.Name, product.Stock),
			})
		}
	}
}

func (s *SessionService) getTable(tableID uint) (*models.Table, error) {
	var table models.Table
	if err := s.DB.Preload("SessionItems").Preload("SessionItems.Product").
		First(&table, tableID).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// lockForUpdate adds FOR UPDATE on stores that support it. SQLite has
// a single writer per database, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isRetryableTxError matches the conflict errors the store reports
// when two checkouts collide (MySQL deadlock/lock wait, SQLite busy).
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Deadlock") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
