package services

import (
	"fmt"
	"testing"

	"bizbooks-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Company{}, &models.User{}, &models.Party{}, &models.Item{},
		&models.Document{}, &models.DocumentLine{}, &models.PaymentHistoryEntry{},
		&models.Payment{}, &models.PaymentAllocation{},
		&models.DocumentSequence{}, &models.PaymentReminderLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedCompany creates a company with one owner user.
func seedCompany(t *testing.T, db *gorm.DB) (companyID, userID uuid.UUID) {
	t.Helper()
	company := models.Company{Name: "Test Traders", State: "GJ"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	user := models.User{
		Email:     fmt.Sprintf("owner-%s@test", t.Name()),
		Password:  "secret123",
		Name:      "Owner",
		Role:      "owner",
		CompanyID: company.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return company.ID, user.ID
}

func seedParty(t *testing.T, db *gorm.DB, companyID, userID uuid.UUID, name, phone string, partyType models.PartyType, balance float64) models.Party {
	t.Helper()
	party := models.Party{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		Name:            name,
		Phone:           phone,
		PartyType:       partyType,
		CurrentBalance:  balance,
		IsActive:        true,
	}
	if err := db.Create(&party).Error; err != nil {
		t.Fatalf("party: %v", err)
	}
	return party
}

func seedItem(t *testing.T, db *gorm.DB, companyID, userID uuid.UUID, name string, itemType models.ItemType, stock float64) models.Item {
	t.Helper()
	item := models.Item{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		Name:            name,
		ItemCode:        fmt.Sprintf("%s-%s", name, t.Name()),
		Type:            itemType,
		GSTRate:         18,
		SalePrice:       100,
		BuyPrice:        80,
		CurrentStock:    stock,
		IsActive:        true,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	return item
}
