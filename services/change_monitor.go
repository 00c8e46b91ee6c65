package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/floor"
	"github.com/cuetracker/billiard-app/models"
)

// ChangeMonitor polls the db_changes table that the MySQL triggers
// append to and re-broadcasts document-level updates to the floor
// hub. It is how a terminal hears about a session another terminal
// touched without polling every table row itself.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(change)
		case "bills":
			cm.processBillChange(change)
		case "products":
			cm.processProductChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Error committing change batch: %v", err)
		tx.Rollback()
	}
}

func (cm *ChangeMonitor) processTableChange(change models.DBChange) {
	var table models.Table

	if change.ActionType != "DELETE" {
		if err := cm.DB.Preload("SessionItems").First(&table, change.RecordID).Error; err != nil {
			log.Printf("Error fetching table: %v", err)
			return
		}
	}

	switch change.ActionType {
	case "INSERT":
		floor.BroadcastTableCreate(table)
	case "UPDATE":
		floor.BroadcastTableUpdate(table)
	case "DELETE":
		floor.BroadcastTableDelete(models.Table{ID: uint(change.RecordID)})
	}
}

func (cm *ChangeMonitor) processBillChange(change models.DBChange) {
	if change.ActionType != "INSERT" {
		// Bills are immutable, only inserts matter.
		return
	}
	var bill models.Bill
	if err := cm.DB.Preload("Items").First(&bill, change.RecordID).Error; err != nil {
		log.Printf("Error fetching bill: %v", err)
		return
	}
	floor.BroadcastBillCreated(bill)
}

func (cm *ChangeMonitor) processProductChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var product models.Product
	if err := cm.DB.First(&product, change.RecordID).Error; err != nil {
		log.Printf("Error fetching product: %v", err)
		return
	}
	if product.Stock < LowStockThreshold {
		floor.BroadcastStockLow(product)
	}
}
