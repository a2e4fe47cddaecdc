package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/eventbus"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/queue"
	"github.com/realcpa-hub/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	offerRepo     repository.OfferRepository
	linkRepo      repository.TrackingLinkRepository
	eventRepo     repository.EventRepository
	payoutRepo    repository.PayoutRepository
	tracking      *TrackingService
	events        *EventService
	earnings      *EarningsService
	payouts       *PayoutService
	participation *ParticipationService
	offers        *OfferService
	stats         *StatsService
	notifications *NotificationService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	env := &serviceTestEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		offerRepo:  repository.NewOfferRepository(db),
		linkRepo:   repository.NewTrackingLinkRepository(db),
		eventRepo:  repository.NewEventRepository(db),
		payoutRepo: repository.NewPayoutRepository(db),
	}
	participationRepo := repository.NewParticipationRepository(db)
	publisher := eventbus.NoopPublisher{}

	env.notifications = NewNotificationService(repository.NewNotificationRepository(db), env.userRepo, queueClient, NewEmailService(&config.EmailConfig{}))
	env.tracking = NewTrackingService(env.linkRepo, env.eventRepo, "https://track.example.com/")
	env.events = NewEventService(env.linkRepo, env.offerRepo, env.eventRepo, publisher)
	env.earnings = NewEarningsService(env.linkRepo, env.eventRepo)
	env.payouts = NewPayoutService(env.userRepo, env.linkRepo, env.payoutRepo, env.earnings, env.notifications, publisher,
		NewPayoutSettings(constants.DefaultMinPayoutAmount, constants.DefaultCurrency))
	env.participation = NewParticipationService(participationRepo, env.offerRepo, env.linkRepo, DeterministicTokenGenerator{}, env.tracking, env.notifications)
	env.offers = NewOfferService(env.offerRepo)
	env.stats = NewStatsService(env.userRepo, env.offerRepo, env.linkRepo, env.eventRepo, env.payoutRepo, participationRepo,
		repository.NewDashboardRepository(db), env.earnings)
	return env
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Status:       constants.UserStatusActive,
		Locale:       "en-US",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

type offerOption func(*models.Offer)

func withHoldDays(days int) offerOption {
	return func(o *models.Offer) { o.HoldDays = &days }
}

func withCapConversions(n int) offerOption {
	return func(o *models.Offer) { o.CapConversions = &n }
}

func withCapAmount(amount int64) offerOption {
	return func(o *models.Offer) { o.CapAmount = models.MoneyPtr(decimal.NewFromInt(amount)) }
}

func withStatus(status string) offerOption {
	return func(o *models.Offer) { o.Status = status }
}

func createTestOffer(t *testing.T, db *gorm.DB, supplierID uint, model string, payout int64, opts ...offerOption) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		SupplierID:   supplierID,
		Title:        "Offer " + model,
		LandingURL:   "https://shop.example.com/landing",
		PayoutModel:  model,
		PayoutAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(payout)),
		Currency:     constants.DefaultCurrency,
		Status:       constants.OfferStatusActive,
	}
	for _, opt := range opts {
		opt(offer)
	}
	if err := db.Create(offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	return offer
}

func createTestLink(t *testing.T, db *gorm.DB, offerID, affiliateID uint) *models.TrackingLink {
	t.Helper()
	link := &models.TrackingLink{
		OfferID:     offerID,
		AffiliateID: affiliateID,
		Token:       DeterministicTokenGenerator{}.Generate(affiliateID, offerID),
	}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("create tracking link failed: %v", err)
	}
	return link
}

func createTestEvent(t *testing.T, db *gorm.DB, linkID uint, eventType, status string, amount int64, createdAt time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		TrackingLinkID: linkID,
		EventType:      eventType,
		Amount:         models.MoneyPtr(decimal.NewFromInt(amount)),
		Currency:       constants.DefaultCurrency,
		Status:         status,
		CreatedAt:      createdAt,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	return event
}

func createTestPayout(t *testing.T, db *gorm.DB, affiliateID uint, amount int64, status string) *models.Payout {
	t.Helper()
	now := time.Now()
	payout := &models.Payout{
		AffiliateID: affiliateID,
		PeriodStart: now,
		PeriodEnd:   now,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Currency:    constants.DefaultCurrency,
		Status:      status,
	}
	if err := db.Create(payout).Error; err != nil {
		t.Fatalf("create payout failed: %v", err)
	}
	return payout
}

func countEvents(t *testing.T, db *gorm.DB, where string, args ...interface{}) int64 {
	t.Helper()
	var total int64
	query := db.Model(&models.Event{})
	if where != "" {
		query = query.Where(where, args...)
	}
	if err := query.Count(&total).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	return total
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
