package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createOffer(t *testing.T, db *gorm.DB, supplierID uint, model string, payout int64, status string) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		SupplierID:   supplierID,
		Title:        "Offer " + model,
		LandingURL:   "https://example.com/landing",
		PayoutModel:  model,
		PayoutAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(payout)),
		Currency:     constants.DefaultCurrency,
		Status:       status,
	}
	if err := db.Create(offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	return offer
}

func createLink(t *testing.T, db *gorm.DB, offerID, affiliateID uint) *models.TrackingLink {
	t.Helper()
	link := &models.TrackingLink{
		OfferID:     offerID,
		AffiliateID: affiliateID,
		Token:       fmt.Sprintf("tk-%08d-%08d", affiliateID, offerID),
	}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("create tracking link failed: %v", err)
	}
	return link
}

func createEvent(t *testing.T, db *gorm.DB, linkID uint, eventType, status string, amount *int64, createdAt time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		TrackingLinkID: linkID,
		EventType:      eventType,
		Currency:       constants.DefaultCurrency,
		Status:         status,
		CreatedAt:      createdAt,
	}
	if amount != nil {
		event.Amount = models.MoneyPtr(decimal.NewFromInt(*amount))
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	return event
}

func int64Ptr(v int64) *int64 {
	return &v
}
