package service

import (
	"fmt"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningsService 按冻结期与计费模型计算已赚取金额
// 结果每次实时计算，不做缓存
type EarningsService struct {
	linkRepo  repository.TrackingLinkRepository
	eventRepo repository.EventRepository
	now       func() time.Time
}

// NewEarningsService 创建收益服务
func NewEarningsService(linkRepo repository.TrackingLinkRepository, eventRepo repository.EventRepository) *EarningsService {
	return &EarningsService{
		linkRepo:  linkRepo,
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// WithTx 绑定事务，返回副本
func (s *EarningsService) WithTx(tx *gorm.DB) *EarningsService {
	if tx == nil {
		return s
	}
	return &EarningsService{
		linkRepo:  s.linkRepo.WithTx(tx),
		eventRepo: s.eventRepo.WithTx(tx),
		now:       s.now,
	}
}

// WithClock 替换时钟
func (s *EarningsService) WithClock(now func() time.Time) *EarningsService {
	if now != nil {
		s.now = now
	}
	return s
}

// Now 当前时间
func (s *EarningsService) Now() time.Time {
	return s.now()
}

// EarnedWithHold 汇总已过冻结期、且与 Offer 计费模型匹配的已确认转化
func (s *EarningsService) EarnedWithHold(linkIDs []uint, now time.Time) (decimal.Decimal, error) {
	if len(linkIDs) == 0 {
		return decimal.Zero, nil
	}
	rows, err := s.eventRepo.ListConversions(repository.ConversionQuery{
		LinkIDs: linkIDs,
		Status:  constants.EventStatusApproved,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list conversions: %w", err)
	}
	sum := decimal.Zero
	for _, row := range rows {
		holdDays := 0
		if row.HoldDays != nil && *row.HoldDays > 0 {
			holdDays = *row.HoldDays
		}
		holdUntil := row.CreatedAt.Add(time.Duration(holdDays) * 24 * time.Hour)
		if holdUntil.After(now) {
			continue
		}
		if !countsTowardEarnings(row.PayoutModel, row.EventType) {
			continue
		}
		sum = sum.Add(row.Amount.DecimalOrZero())
	}
	return sum.Round(2), nil
}

// EarnedForAffiliate 推广者全部链接的已赚取金额
func (s *EarningsService) EarnedForAffiliate(affiliateID uint) (decimal.Decimal, error) {
	linkIDs, err := s.linkRepo.ListIDsByAffiliate(affiliateID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.EarnedWithHold(linkIDs, s.now())
}

// countsTowardEarnings CPL 只计线索，CPA/RevShare 只计销售
func countsTowardEarnings(payoutModel, eventType string) bool {
	switch payoutModel {
	case constants.PayoutModelCPL:
		return eventType == constants.EventTypeLead
	case constants.PayoutModelCPA, constants.PayoutModelRevShare:
		return eventType == constants.EventTypeSale
	default:
		return false
	}
}
