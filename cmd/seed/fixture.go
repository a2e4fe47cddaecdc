package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture 演示数据文件
type Fixture struct {
	Users          []UserFixture          `yaml:"users"`
	Offers         []OfferFixture         `yaml:"offers"`
	Participations []ParticipationFixture `yaml:"participations"`
}

// UserFixture 用户
type UserFixture struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	CompanyName string `yaml:"company_name"`
	Role        string `yaml:"role"`
	Locale      string `yaml:"locale"`
}

// OfferFixture Offer，supplier 填写广告主邮箱
type OfferFixture struct {
	Supplier       string `yaml:"supplier"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	LandingURL     string `yaml:"landing_url"`
	PayoutModel    string `yaml:"payout_model"`
	PayoutAmount   string `yaml:"payout_amount"`
	Currency       string `yaml:"currency"`
	HoldDays       *int   `yaml:"hold_days"`
	CapAmount      string `yaml:"cap_amount"`
	CapConversions *int   `yaml:"cap_conversions"`
	Status         string `yaml:"status"`
}

// ParticipationFixture 推广者接入，offer 填写标题
type ParticipationFixture struct {
	Affiliate string `yaml:"affiliate"`
	Offer     string `yaml:"offer"`
	Status    string `yaml:"status"`
}

// Summary 写入统计
type Summary struct {
	Users          int
	Offers         int
	Participations int
	Links          int
}

// ParseFixture 解析 YAML
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// Apply 写入演示数据，已存在的记录跳过
func Apply(db *gorm.DB, fx *Fixture, tokens service.TokenGenerator) (Summary, error) {
	var summary Summary
	if fx == nil {
		return summary, nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		users := make(map[string]*models.User, len(fx.Users))
		for _, item := range fx.Users {
			user, created, err := upsertUser(tx, item)
			if err != nil {
				return err
			}
			users[user.Email] = user
			if created {
				summary.Users++
			}
		}

		offers := make(map[string]*models.Offer, len(fx.Offers))
		for _, item := range fx.Offers {
			supplier, err := lookupUser(tx, users, item.Supplier)
			if err != nil {
				return err
			}
			if supplier.Role != constants.RoleSupplier {
				return fmt.Errorf("offer %q: %s is not a supplier", item.Title, supplier.Email)
			}
			offer, created, err := upsertOffer(tx, supplier.ID, item)
			if err != nil {
				return err
			}
			offers[offer.Title] = offer
			if created {
				summary.Offers++
			}
		}

		for _, item := range fx.Participations {
			affiliate, err := lookupUser(tx, users, item.Affiliate)
			if err != nil {
				return err
			}
			offer, ok := offers[item.Offer]
			if !ok {
				return fmt.Errorf("participation: unknown offer %q", item.Offer)
			}
			created, linked, err := upsertParticipation(tx, affiliate.ID, offer.ID, item.Status, tokens)
			if err != nil {
				return err
			}
			if created {
				summary.Participations++
			}
			if linked {
				summary.Links++
			}
		}
		return nil
	})
	return summary, err
}

func upsertUser(tx *gorm.DB, item UserFixture) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(item.Email))
	if email == "" {
		return nil, false, fmt.Errorf("user: email required")
	}
	var existing models.User
	err := tx.Where("email = ?", email).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, false, err
	}
	if existing.ID != 0 {
		return &existing, false, nil
	}
	role := strings.ToLower(strings.TrimSpace(item.Role))
	switch role {
	case constants.RoleAffiliate, constants.RoleSupplier, constants.RoleAdmin:
	default:
		return nil, false, fmt.Errorf("user %s: invalid role %q", email, item.Role)
	}
	if len(item.Password) < 8 {
		return nil, false, fmt.Errorf("user %s: password too short", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	locale := strings.TrimSpace(item.Locale)
	if locale == "" {
		locale = "ru-RU"
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(item.Name),
		CompanyName:  strings.TrimSpace(item.CompanyName),
		Role:         role,
		Status:       constants.UserStatusActive,
		Locale:       locale,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func lookupUser(tx *gorm.DB, cached map[string]*models.User, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if user, ok := cached[email]; ok {
		return user, nil
	}
	var user models.User
	if err := tx.Where("email = ?", email).Limit(1).Find(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("unknown user %q", email)
	}
	cached[email] = &user
	return &user, nil
}

func upsertOffer(tx *gorm.DB, supplierID uint, item OfferFixture) (*models.Offer, bool, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, false, fmt.Errorf("offer: title required")
	}
	var existing models.Offer
	if err := tx.Where("supplier_id = ? AND title = ?", supplierID, title).Limit(1).Find(&existing).Error; err != nil {
		return nil, false, err
	}
	if existing.ID != 0 {
		return &existing, false, nil
	}

	landing, err := url.Parse(strings.TrimSpace(item.LandingURL))
	if err != nil || (landing.Scheme != "http" && landing.Scheme != "https") || landing.Host == "" {
		return nil, false, fmt.Errorf("offer %q: invalid landing_url", title)
	}
	model := strings.TrimSpace(item.PayoutModel)
	if model == "" {
		model = constants.PayoutModelCPA
	}
	switch model {
	case constants.PayoutModelCPA, constants.PayoutModelCPL, constants.PayoutModelRevShare:
	default:
		return nil, false, fmt.Errorf("offer %q: invalid payout_model %q", title, model)
	}
	amount, err := parseAmount(item.PayoutAmount)
	if err != nil {
		return nil, false, fmt.Errorf("offer %q: payout_amount: %w", title, err)
	}
	status := strings.ToLower(strings.TrimSpace(item.Status))
	if status == "" {
		status = constants.OfferStatusDraft
	}
	switch status {
	case constants.OfferStatusDraft, constants.OfferStatusActive, constants.OfferStatusPaused, constants.OfferStatusClosed:
	default:
		return nil, false, fmt.Errorf("offer %q: invalid status %q", title, item.Status)
	}
	currency := strings.TrimSpace(item.Currency)
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	offer := &models.Offer{
		SupplierID:     supplierID,
		Title:          title,
		Description:    strings.TrimSpace(item.Description),
		LandingURL:     landing.String(),
		PayoutModel:    model,
		PayoutAmount:   models.NewMoneyFromDecimal(amount),
		Currency:       currency,
		HoldDays:       item.HoldDays,
		CapConversions: item.CapConversions,
		Status:         status,
	}
	if strings.TrimSpace(item.CapAmount) != "" {
		capAmount, err := parseAmount(item.CapAmount)
		if err != nil {
			return nil, false, fmt.Errorf("offer %q: cap_amount: %w", title, err)
		}
		offer.CapAmount = models.MoneyPtr(capAmount)
	}
	if err := tx.Create(offer).Error; err != nil {
		return nil, false, err
	}
	return offer, true, nil
}

func upsertParticipation(tx *gorm.DB, affiliateID, offerID uint, status string, tokens service.TokenGenerator) (bool, bool, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = constants.ParticipationStatusPending
	}
	switch status {
	case constants.ParticipationStatusPending, constants.ParticipationStatusApproved, constants.ParticipationStatusRejected:
	default:
		return false, false, fmt.Errorf("participation: invalid status %q", status)
	}

	var existing models.AffiliateOfferParticipation
	if err := tx.Where("offer_id = ? AND affiliate_id = ?", offerID, affiliateID).Limit(1).Find(&existing).Error; err != nil {
		return false, false, err
	}
	created := false
	if existing.ID == 0 {
		now := time.Now()
		participation := &models.AffiliateOfferParticipation{
			OfferID:     offerID,
			AffiliateID: affiliateID,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if status != constants.ParticipationStatusPending {
			participation.DecidedAt = &now
		}
		if err := tx.Create(participation).Error; err != nil {
			return false, false, err
		}
		existing = *participation
		created = true
	}
	if existing.Status != constants.ParticipationStatusApproved {
		return created, false, nil
	}

	var link models.TrackingLink
	if err := tx.Where("offer_id = ? AND affiliate_id = ?", offerID, affiliateID).Limit(1).Find(&link).Error; err != nil {
		return created, false, err
	}
	if link.ID != 0 {
		return created, false, nil
	}
	link = models.TrackingLink{
		OfferID:     offerID,
		AffiliateID: affiliateID,
		Token:       tokens.Generate(affiliateID, offerID),
		CreatedAt:   time.Now(),
	}
	if err := tx.Create(&link).Error; err != nil {
		return created, false, err
	}
	return created, true, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d.Round(2), nil
}
