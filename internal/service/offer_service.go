package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"

	"github.com/shopspring/decimal"
)

var publicOffers = cache.NewJSONCache[models.Offer]("offer:public", 5*time.Minute)

// CreateOfferInput 创建 Offer
type CreateOfferInput struct {
	Title          string
	Description    string
	LandingURL     string
	PayoutModel    string
	PayoutAmount   *decimal.Decimal
	Currency       string
	HoldDays       *int
	CapAmount      *decimal.Decimal
	CapConversions *int
}

// UpdateOfferInput 部分更新 Offer，nil 字段保持不变
type UpdateOfferInput struct {
	Title          *string
	Description    *string
	LandingURL     *string
	PayoutModel    *string
	PayoutAmount   *decimal.Decimal
	Currency       *string
	HoldDays       *int
	CapAmount      *decimal.Decimal
	CapConversions *int
}

// OfferService Offer 管理
type OfferService struct {
	offerRepo repository.OfferRepository
}

// NewOfferService 创建 Offer 服务
func NewOfferService(offerRepo repository.OfferRepository) *OfferService {
	return &OfferService{offerRepo: offerRepo}
}

// ListSupplierOffers 广告主自己的 Offer
func (s *OfferService) ListSupplierOffers(supplierID uint) ([]models.Offer, error) {
	return s.offerRepo.ListBySupplier(supplierID)
}

// CreateOffer 广告主创建 Offer，初始为草稿
func (s *OfferService) CreateOffer(supplierID uint, input CreateOfferInput) (*models.Offer, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrOfferInvalid
	}
	landingURL, err := normalizeLandingURL(input.LandingURL)
	if err != nil {
		return nil, err
	}
	payoutModel := strings.TrimSpace(input.PayoutModel)
	if payoutModel == "" {
		payoutModel = constants.PayoutModelCPA
	}
	if !isPayoutModel(payoutModel) {
		return nil, ErrOfferPayoutModelInvalid
	}
	payoutAmount := decimal.Zero
	if input.PayoutAmount != nil {
		payoutAmount = *input.PayoutAmount
	}
	if err := validateOfferNumbers(&payoutAmount, input.HoldDays, input.CapAmount, input.CapConversions); err != nil {
		return nil, err
	}

	now := time.Now()
	offer := &models.Offer{
		SupplierID:     supplierID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		LandingURL:     landingURL,
		PayoutModel:    payoutModel,
		PayoutAmount:   models.NewMoneyFromDecimal(payoutAmount),
		Currency:       resolveCurrency(input.Currency),
		HoldDays:       input.HoldDays,
		CapConversions: input.CapConversions,
		Status:         constants.OfferStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.CapAmount != nil {
		offer.CapAmount = models.MoneyPtr(*input.CapAmount)
	}
	if err := s.offerRepo.Create(offer); err != nil {
		return nil, err
	}
	logger.Infow("offer_created", "offer_id", offer.ID, "supplier_id", supplierID)
	return offer, nil
}

// UpdateOffer 广告主更新自己的 Offer
func (s *OfferService) UpdateOffer(ctx context.Context, supplierID, offerID uint, input UpdateOfferInput) (*models.Offer, error) {
	offer, err := s.ownedOffer(supplierID, offerID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrOfferInvalid
		}
		offer.Title = title
	}
	if input.Description != nil {
		offer.Description = strings.TrimSpace(*input.Description)
	}
	if input.LandingURL != nil {
		landingURL, err := normalizeLandingURL(*input.LandingURL)
		if err != nil {
			return nil, err
		}
		offer.LandingURL = landingURL
	}
	if input.PayoutModel != nil {
		model := strings.TrimSpace(*input.PayoutModel)
		if !isPayoutModel(model) {
			return nil, ErrOfferPayoutModelInvalid
		}
		offer.PayoutModel = model
	}
	if err := validateOfferNumbers(input.PayoutAmount, input.HoldDays, input.CapAmount, input.CapConversions); err != nil {
		return nil, err
	}
	if input.PayoutAmount != nil {
		offer.PayoutAmount = models.NewMoneyFromDecimal(*input.PayoutAmount)
	}
	if input.Currency != nil {
		offer.Currency = resolveCurrency(*input.Currency)
	}
	if input.HoldDays != nil {
		offer.HoldDays = input.HoldDays
	}
	if input.CapAmount != nil {
		offer.CapAmount = models.MoneyPtr(*input.CapAmount)
	}
	if input.CapConversions != nil {
		offer.CapConversions = input.CapConversions
	}
	offer.UpdatedAt = time.Now()
	if err := s.offerRepo.Update(offer); err != nil {
		return nil, err
	}
	s.invalidatePublicOffer(ctx, offer.ID)
	return offer, nil
}

// UpdateOfferStatus 广告主切换 Offer 状态
func (s *OfferService) UpdateOfferStatus(ctx context.Context, supplierID, offerID uint, status string) (*models.Offer, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !isOfferStatus(status) {
		return nil, ErrOfferStatusInvalid
	}
	offer, err := s.ownedOffer(supplierID, offerID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.offerRepo.UpdateStatus(offer.ID, status, now); err != nil {
		return nil, err
	}
	offer.Status = status
	offer.UpdatedAt = now
	s.invalidatePublicOffer(ctx, offer.ID)
	logger.Infow("offer_status_changed", "offer_id", offer.ID, "status", status)
	return offer, nil
}

// ListPublicOffers 公开 Offer 列表，默认 active + paused
func (s *OfferService) ListPublicOffers(filter repository.OfferListFilter) ([]models.Offer, int64, error) {
	if len(filter.Statuses) == 0 {
		filter.Statuses = []string{constants.OfferStatusActive, constants.OfferStatusPaused}
	}
	for _, status := range filter.Statuses {
		if !isPublicOfferStatus(strings.TrimSpace(status)) {
			return nil, 0, fmt.Errorf("%w: status=%q", ErrFilterInvalid, status)
		}
	}
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFilterInvalid, err)
	}
	return s.offerRepo.List(filter)
}

// ListOffers 管理端 Offer 列表
func (s *OfferService) ListOffers(filter repository.OfferListFilter) ([]models.Offer, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFilterInvalid, err)
	}
	return s.offerRepo.List(filter)
}

// GetPublicOffer 公开 Offer 详情（Redis 缓存）
func (s *OfferService) GetPublicOffer(ctx context.Context, offerID uint) (*models.Offer, error) {
	if cached, hit, err := publicOffers.Get(ctx, offerID); err != nil {
		logger.Debugw("public_offer_cache_read_failed", "offer_id", offerID, "error", err)
	} else if hit {
		return cached, nil
	}

	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil || !isPublicOfferStatus(offer.Status) {
		return nil, ErrOfferNotFound
	}
	if err := publicOffers.Set(ctx, offerID, offer); err != nil {
		logger.Debugw("public_offer_cache_write_failed", "offer_id", offerID, "error", err)
	}
	return offer, nil
}

func (s *OfferService) ownedOffer(supplierID, offerID uint) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil || offer.SupplierID != supplierID {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

func (s *OfferService) invalidatePublicOffer(ctx context.Context, offerID uint) {
	if err := publicOffers.Del(ctx, offerID); err != nil {
		logger.Warnw("public_offer_cache_invalidate_failed", "offer_id", offerID, "error", err)
	}
}

func normalizeLandingURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", ErrLandingURLInvalid
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrLandingURLInvalid
	}
	return raw, nil
}

func validateOfferNumbers(payoutAmount *decimal.Decimal, holdDays *int, capAmount *decimal.Decimal, capConversions *int) error {
	if payoutAmount != nil && payoutAmount.IsNegative() {
		return ErrOfferInvalid
	}
	if holdDays != nil && *holdDays < 0 {
		return ErrOfferInvalid
	}
	if capAmount != nil && capAmount.IsNegative() {
		return ErrOfferInvalid
	}
	if capConversions != nil && *capConversions < 0 {
		return ErrOfferInvalid
	}
	return nil
}

func isPayoutModel(model string) bool {
	switch model {
	case constants.PayoutModelCPA, constants.PayoutModelCPL, constants.PayoutModelRevShare:
		return true
	}
	return false
}

func isOfferStatus(status string) bool {
	switch status {
	case constants.OfferStatusDraft, constants.OfferStatusActive, constants.OfferStatusPaused, constants.OfferStatusClosed:
		return true
	}
	return false
}

func isPublicOfferStatus(status string) bool {
	return status == constants.OfferStatusActive || status == constants.OfferStatusPaused
}
