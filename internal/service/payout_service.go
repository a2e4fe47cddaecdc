package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/eventbus"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"
	"github.com/realcpa-hub/internal/telemetry"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// BalanceSummary 推广者余额
type BalanceSummary struct {
	Earned           models.Money `json:"earned"`
	PaidOut          models.Money `json:"paidOut"`
	PendingAmount    models.Money `json:"pendingAmount"`
	AvailableBalance models.Money `json:"availableBalance"`
	Currency         string       `json:"currency"`
	MinPayout        models.Money `json:"minPayout"`
}

// PayoutSettings 结算参数
type PayoutSettings struct {
	MinAmount decimal.Decimal
	Currency  string
}

// NewPayoutSettings 解析配置，非法值回退默认
func NewPayoutSettings(minAmount, currency string) PayoutSettings {
	settings := PayoutSettings{
		MinAmount: decimal.RequireFromString(constants.DefaultMinPayoutAmount),
		Currency:  constants.DefaultCurrency,
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(minAmount)); err == nil && d.IsPositive() {
		settings.MinAmount = d
	}
	if c := strings.TrimSpace(currency); c != "" {
		settings.Currency = c
	}
	return settings
}

// 结算单状态流转：pending → processing|canceled，processing → paid|canceled
var payoutTransitions = map[string][]string{
	constants.PayoutStatusPending:    {constants.PayoutStatusProcessing, constants.PayoutStatusCanceled},
	constants.PayoutStatusProcessing: {constants.PayoutStatusPaid, constants.PayoutStatusCanceled},
}

// PayoutService 余额与提现服务
type PayoutService struct {
	userRepo        repository.UserRepository
	linkRepo        repository.TrackingLinkRepository
	payoutRepo      repository.PayoutRepository
	earnings        *EarningsService
	notificationSvc *NotificationService
	publisher       eventbus.Publisher
	settings        PayoutSettings
}

// NewPayoutService 创建结算服务
func NewPayoutService(
	userRepo repository.UserRepository,
	linkRepo repository.TrackingLinkRepository,
	payoutRepo repository.PayoutRepository,
	earnings *EarningsService,
	notificationSvc *NotificationService,
	publisher eventbus.Publisher,
	settings PayoutSettings,
) *PayoutService {
	return &PayoutService{
		userRepo:        userRepo,
		linkRepo:        linkRepo,
		payoutRepo:      payoutRepo,
		earnings:        earnings,
		notificationSvc: notificationSvc,
		publisher:       publisher,
		settings:        settings,
	}
}

// Balance 余额汇总：available = max(0, earned - paid - pending)
func (s *PayoutService) Balance(affiliateID uint) (*BalanceSummary, error) {
	return s.balanceWith(s.earnings, s.payoutRepo, affiliateID)
}

func (s *PayoutService) balanceWith(earnings *EarningsService, payoutRepo repository.PayoutRepository, affiliateID uint) (*BalanceSummary, error) {
	earned, err := earnings.EarnedForAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	paid, err := payoutRepo.SumByAffiliate(affiliateID, []string{constants.PayoutStatusPaid})
	if err != nil {
		return nil, fmt.Errorf("sum paid payouts: %w", err)
	}
	pending, err := payoutRepo.SumByAffiliate(affiliateID, []string{constants.PayoutStatusPending, constants.PayoutStatusProcessing})
	if err != nil {
		return nil, fmt.Errorf("sum pending payouts: %w", err)
	}
	available := earned.Sub(paid).Sub(pending)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &BalanceSummary{
		Earned:           models.NewMoneyFromDecimal(earned),
		PaidOut:          models.NewMoneyFromDecimal(paid),
		PendingAmount:    models.NewMoneyFromDecimal(pending),
		AvailableBalance: models.NewMoneyFromDecimal(available),
		Currency:         s.settings.Currency,
		MinPayout:        models.NewMoneyFromDecimal(s.settings.MinAmount),
	}, nil
}

// RequestPayout 发起提现；同一推广者的并发请求通过锁定用户行串行化
func (s *PayoutService) RequestPayout(ctx context.Context, affiliateID uint, amount decimal.Decimal) (payout *models.Payout, err error) {
	_, span := telemetry.StartSpan(ctx, "payout.request")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.Int64("affiliate_id", int64(affiliateID)))

	if !amount.IsPositive() || amount.LessThan(s.settings.MinAmount) {
		return nil, ErrPayoutBelowMinimum
	}
	err = s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.WithTx(tx).GetByIDForUpdate(affiliateID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		payoutRepo := s.payoutRepo.WithTx(tx)
		balance, err := s.balanceWith(s.earnings.WithTx(tx), payoutRepo, affiliateID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance.AvailableBalance.Decimal) {
			return ErrPayoutInsufficientBalance
		}
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		payout = &models.Payout{
			AffiliateID: affiliateID,
			PeriodStart: today,
			PeriodEnd:   today,
			Amount:      models.NewMoneyFromDecimal(amount),
			Currency:    s.settings.Currency,
			Status:      constants.PayoutStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return payoutRepo.Create(payout)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("payout_requested", "payout_id", payout.ID, "affiliate_id", affiliateID, "amount", payout.Amount.String())
	return payout, nil
}

// UpdatePayoutStatus 管理员推进结算单状态，标记 paid 时通知推广者
func (s *PayoutService) UpdatePayoutStatus(ctx context.Context, payoutID uint, status string) (payout *models.Payout, err error) {
	_, span := telemetry.StartSpan(ctx, "payout.update_status")
	defer func() { telemetry.EndSpan(span, err) }()

	status = strings.ToLower(strings.TrimSpace(status))
	if !isPayoutStatus(status) {
		return nil, ErrPayoutStatusInvalid
	}
	span.SetAttributes(attribute.Int64("payout_id", int64(payoutID)), attribute.String("status", status))

	var previous string
	err = s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		payoutRepo := s.payoutRepo.WithTx(tx)
		current, err := payoutRepo.GetByIDForUpdate(payoutID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrPayoutNotFound
		}
		if !canTransitPayout(current.Status, status) {
			return ErrPayoutStatusTransition
		}
		now := time.Now()
		var paidAt *time.Time
		if status == constants.PayoutStatusPaid {
			paidAt = &now
		}
		if err := payoutRepo.UpdateStatus(current.ID, status, paidAt, now); err != nil {
			return err
		}
		previous = current.Status
		current.Status = status
		current.UpdatedAt = now
		if paidAt != nil {
			current.PaidAt = paidAt
		}
		payout = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payout_status_changed", "payout_id", payout.ID, "from", previous, "to", status)
	eventbus.Emit(s.publisher, constants.DomainEventPayoutStatusChanged, strconv.FormatUint(uint64(payout.AffiliateID), 10), map[string]interface{}{
		"payout_id":    payout.ID,
		"affiliate_id": payout.AffiliateID,
		"from":         previous,
		"to":           status,
		"amount":       payout.Amount.String(),
		"currency":     payout.Currency,
	})
	if status == constants.PayoutStatusPaid {
		s.notifyPaid(ctx, payout)
	}
	return payout, nil
}

// ListAffiliatePayouts 推广者结算历史（新的在前）
func (s *PayoutService) ListAffiliatePayouts(affiliateID uint) ([]models.Payout, error) {
	return s.payoutRepo.ListByAffiliate(affiliateID)
}

// ListPayouts 管理端结算单列表
func (s *PayoutService) ListPayouts(filter repository.PayoutListFilter) ([]models.Payout, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFilterInvalid, err)
	}
	return s.payoutRepo.List(filter)
}

func (s *PayoutService) notifyPaid(ctx context.Context, payout *models.Payout) {
	if s.notificationSvc == nil {
		return
	}
	s.notificationSvc.Notify(ctx, NotifyInput{
		UserID:   payout.AffiliateID,
		Type:     constants.NotificationTypePayoutPaid,
		TitleKey: "notification.payout_paid.title",
		BodyKey:  "notification.payout_paid.body",
		BodyArgs: []interface{}{payout.ID, payout.Amount.String(), payout.Currency},
		Link:     "/affiliate/payouts",
	})
}

func isPayoutStatus(status string) bool {
	switch status {
	case constants.PayoutStatusPending, constants.PayoutStatusProcessing, constants.PayoutStatusPaid, constants.PayoutStatusCanceled:
		return true
	}
	return false
}

func canTransitPayout(from, to string) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
