package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
)

func setupSessionDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Table{},
		&models.SessionItem{},
		&models.ProductCategory{},
		&models.Product{},
		&models.Customer{},
		&models.Membership{},
		&models.Bill{},
		&models.BillItem{},
		&models.Notification{},
	))
	return db
}

// fixedClock returns a service whose clock is controlled by the test.
func fixedClock(db *gorm.DB, at time.Time) (*SessionService, *time.Time) {
	current := at
	svc := NewSessionService(db)
	svc.Now = func() time.Time { return current }
	return svc, &current
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	category := models.ProductCategory{Name: "Snacks"}
	if err := db.Where("name = ?", category.Name).FirstOrCreate(&category).Error; err != nil {
		t.Fatal(err)
	}
	product := models.Product{Name: name, Price: price, Stock: stock, CategoryID: category.ID}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestStartSession(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, _ := fixedClock(db, t0)

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	got, err := svc.Start(table.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.TableInUse, got.Status)
	assert.Equal(t, t0.UnixMilli(), got.StartTime)
	assert.Equal(t, t0.UnixMilli(), got.SessionStartTime)
	assert.Equal(t, int64(0), got.ElapsedTime)
	assert.Nil(t, got.LastPausedTime)
}

func TestStartRejectsOccupiedTable(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableInUse}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Start(table.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	table.Status = models.TableOutOfService
	require.NoError(t, db.Save(&table).Error)
	_, err = svc.Start(table.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPauseResumeAccumulates(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Start(table.ID, nil)
	require.NoError(t, err)

	// pause 600s in
	*clock = t0.Add(600 * time.Second)
	paused, err := svc.Pause(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TablePaused, paused.Status)
	assert.Equal(t, int64(600), paused.ElapsedTime)
	assert.Equal(t, int64(0), paused.StartTime)
	require.NotNil(t, paused.LastPausedTime)
	assert.Equal(t, clock.UnixMilli(), *paused.LastPausedTime)

	// resume 100s later; the paused gap is not billed
	*clock = t0.Add(700 * time.Second)
	resumed, err := svc.Resume(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableInUse, resumed.Status)
	assert.Equal(t, int64(600), resumed.ElapsedTime)
	assert.Nil(t, resumed.LastPausedTime)

	// 300s after resume: 600 + 300, not the 1000 of wall time
	*clock = t0.Add(1000 * time.Second)
	assert.Equal(t, int64(900), DisplayedElapsed(resumed, *clock))

	// session start survives the pause cycle
	assert.Equal(t, t0.UnixMilli(), resumed.SessionStartTime)
}

func TestPauseRequiresRunningTimer(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", Status: models.TablePaused, ElapsedTime: 100}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Pause(table.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Resume(table.ID)
	require.NoError(t, err)
	_, err = svc.Resume(table.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAddItemMergesByProduct(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	require.NoError(t, db.Create(&table).Error)
	product := seedProduct(t, db, "Cola", 40, 10)

	first, err := svc.AddItem(table.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, 40.0, first.UnitPrice)

	// a price change between adds does not touch the open line
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", 55).Error)

	second, err := svc.AddItem(table.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Quantity)
	assert.Equal(t, 40.0, second.UnitPrice)

	var count int64
	db.Model(&models.SessionItem{}).Where("table_id = ?", table.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddItemValidation(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	require.NoError(t, db.Create(&table).Error)
	product := seedProduct(t, db, "Cola", 40, 10)

	_, err := svc.AddItem(table.ID, product.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.AddItem(table.ID, product.ID, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(table.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	idle := models.Table{Name: "T2", Status: models.TableAvailable}
	require.NoError(t, db.Create(&idle).Error)
	_, err = svc.AddItem(idle.ID, product.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRemoveItem(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", Status: models.TableInUse, StartTime: time.Now().UnixMilli()}
	require.NoError(t, db.Create(&table).Error)
	product := seedProduct(t, db, "Cola", 40, 10)

	_, err := svc.AddItem(table.ID, product.ID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveItem(table.ID, product.ID))

	var count int64
	db.Model(&models.SessionItem{}).Where("table_id = ?", table.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// removing a product that is not on the tab is a no-op
	assert.NoError(t, svc.RemoveItem(table.ID, product.ID))
}

func TestCheckoutCash(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	table := models.Table{Name: "T1", HourlyRate: 12, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	cola := seedProduct(t, db, "Cola", 5.00, 10)
	chips := seedProduct(t, db, "Chips", 1.50, 8)

	_, err := svc.Start(table.ID, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, chips.ID, 1)
	require.NoError(t, err)

	*clock = t0.Add(30 * time.Minute)
	bill, err := svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentCash, StaffID: 1})
	require.NoError(t, err)

	// 0.5h * 12 = 6.00 table, 11.50 items, grand total floored to 17
	assert.Equal(t, 6.0, bill.TableBill)
	assert.Equal(t, 11.5, bill.ItemsBill)
	assert.Equal(t, 17.0, bill.TotalAmount)
	assert.Equal(t, 17.0, bill.AmountPaid)
	assert.Equal(t, int64(1800), bill.Duration)
	assert.Equal(t, t0.UnixMilli(), bill.StartTime)
	assert.Equal(t, clock.UnixMilli(), bill.EndTime)
	assert.Len(t, bill.Items, 2)

	// stock went down
	var gotCola, gotChips models.Product
	require.NoError(t, db.First(&gotCola, cola.ID).Error)
	require.NoError(t, db.First(&gotChips, chips.ID).Error)
	assert.Equal(t, 8, gotCola.Stock)
	assert.Equal(t, 7, gotChips.Stock)

	// table is reset for the next session
	var gotTable models.Table
	require.NoError(t, db.Preload("SessionItems").First(&gotTable, table.ID).Error)
	assert.Equal(t, models.TableAvailable, gotTable.Status)
	assert.Equal(t, int64(0), gotTable.StartTime)
	assert.Equal(t, int64(0), gotTable.ElapsedTime)
	assert.Empty(t, gotTable.SessionItems)
}

func TestCheckoutFromPausedUsesFrozenTime(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	table := models.Table{Name: "T1", HourlyRate: 10, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Start(table.ID, nil)
	require.NoError(t, err)
	*clock = t0.Add(time.Hour)
	_, err = svc.Pause(table.ID)
	require.NoError(t, err)

	// the bill does not grow while staff walk to the counter
	*clock = t0.Add(2 * time.Hour)
	bill, err := svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentCash, StaffID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), bill.Duration)
	assert.Equal(t, 10.0, bill.TotalAmount)
}

func TestCheckoutAbortedByMissingProduct(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	table := models.Table{Name: "T1", HourlyRate: 10, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	product := seedProduct(t, db, "Cola", 5, 10)

	_, err := svc.Start(table.ID, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, product.ID, 2)
	require.NoError(t, err)

	// product gets removed from the catalogue mid-session
	require.NoError(t, db.Delete(&models.Product{}, product.ID).Error)

	*clock = t0.Add(time.Hour)
	_, err = svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentCash, StaffID: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// nothing committed: no bill, session intact
	var bills int64
	db.Model(&models.Bill{}).Count(&bills)
	assert.Equal(t, int64(0), bills)

	var gotTable models.Table
	require.NoError(t, db.Preload("SessionItems").First(&gotTable, table.ID).Error)
	assert.Equal(t, models.TableInUse, gotTable.Status)
	assert.Len(t, gotTable.SessionItems, 1)
}

func TestCheckoutAbortedByInsufficientStock(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	table := models.Table{Name: "T1", HourlyRate: 10, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	product := seedProduct(t, db, "Cola", 5, 3)

	_, err := svc.Start(table.ID, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, product.ID, 2)
	require.NoError(t, err)

	// someone sells the remaining stock over the counter
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", 1).Error)

	*clock = t0.Add(time.Hour)
	_, err = svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentCash, StaffID: 1})
	assert.ErrorIs(t, err, ErrStockInconsistency)

	// stock untouched, no bill
	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, product.ID).Error)
	assert.Equal(t, 1, gotProduct.Stock)

	var bills int64
	db.Model(&models.Bill{}).Count(&bills)
	assert.Equal(t, int64(0), bills)
}

func TestCheckoutMemberDebitsHoursAndBalance(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	customer := models.Customer{FirstName: "Asha", RemainingHours: 10, Balance: 100}
	require.NoError(t, db.Create(&customer).Error)

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	product := seedProduct(t, db, "Cola", 50, 10)

	_, err := svc.Start(table.ID, &customer.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, product.ID, 1)
	require.NoError(t, err)

	*clock = t0.Add(90 * time.Minute)
	bill, err := svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentMember, StaffID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1.5, bill.HoursUsed)
	assert.Equal(t, 0.0, bill.AmountPaid)

	var gotCustomer models.Customer
	require.NoError(t, db.First(&gotCustomer, customer.ID).Error)
	assert.InDelta(t, 8.5, gotCustomer.RemainingHours, 1e-9)
	assert.InDelta(t, 50.0, gotCustomer.Balance, 1e-9)
}

func TestCheckoutMemberRequiresCustomer(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableInUse,
		StartTime: time.Now().UnixMilli(), SessionStartTime: time.Now().UnixMilli()}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentMember, StaffID: 1})
	assert.ErrorIs(t, err, ErrMemberRequired)
}

func TestCheckoutMemberInsufficientHours(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	customer := models.Customer{FirstName: "Asha", RemainingHours: 1}
	require.NoError(t, db.Create(&customer).Error)

	table := models.Table{Name: "T1", HourlyRate: 200, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Start(table.ID, &customer.ID)
	require.NoError(t, err)

	*clock = t0.Add(2 * time.Hour)
	_, err = svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentMember, StaffID: 1})
	assert.ErrorIs(t, err, ErrInsufficientHours)

	// hours untouched on abort
	var gotCustomer models.Customer
	require.NoError(t, db.First(&gotCustomer, customer.ID).Error)
	assert.Equal(t, 1.0, gotCustomer.RemainingHours)
}

func TestCheckoutOverpayCreditsBalance(t *testing.T) {
	db := setupSessionDB(t)
	t0 := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc, clock := fixedClock(db, t0)

	customer := models.Customer{FirstName: "Asha"}
	require.NoError(t, db.Create(&customer).Error)

	table := models.Table{Name: "T1", HourlyRate: 100, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Start(table.ID, &customer.ID)
	require.NoError(t, err)

	*clock = t0.Add(time.Hour)
	paid := 150.0
	bill, err := svc.Checkout(table.ID, CheckoutOptions{
		PaymentMethod: models.PaymentCash,
		StaffID:       1,
		AmountPaid:    &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, bill.TotalAmount)
	assert.Equal(t, 150.0, bill.AmountPaid)

	var gotCustomer models.Customer
	require.NoError(t, db.First(&gotCustomer, customer.ID).Error)
	assert.InDelta(t, 50.0, gotCustomer.Balance, 1e-9)
}

func TestCheckoutRejectsUnknownMethod(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	_, err := svc.Checkout(1, CheckoutOptions{PaymentMethod: "card"})
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestCheckoutRejectsIdleTable(t *testing.T) {
	db := setupSessionDB(t)
	svc, _ := fixedClock(db, time.Now())

	table := models.Table{Name: "T1", Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	_, err := svc.Checkout(table.ID, CheckoutOptions{PaymentMethod: models.PaymentCash})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
