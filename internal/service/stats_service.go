package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"

	"github.com/shopspring/decimal"
)

const defaultAnalyticsRangeDays = 30

// AffiliateStats 推广者概览
type AffiliateStats struct {
	Clicks          int64        `json:"clicks"`
	Leads           int64        `json:"leads"`
	Sales           int64        `json:"sales"`
	Earned          models.Money `json:"earned"`
	PaidOut         models.Money `json:"paidOut"`
	ConnectedOffers int64        `json:"connectedOffers"`
}

// AnalyticsQuery 分析报表时间范围，空值默认最近 30 天
type AnalyticsQuery struct {
	From *time.Time
	To   *time.Time
}

// AnalyticsBucket 统计桶
type AnalyticsBucket struct {
	Clicks int64        `json:"clicks"`
	Leads  int64        `json:"leads"`
	Sales  int64        `json:"sales"`
	Earned models.Money `json:"earned"`
}

// AnalyticsDay 按天统计
type AnalyticsDay struct {
	Date string `json:"date"`
	AnalyticsBucket
}

// AffiliateAnalytics 推广者分析报表
type AffiliateAnalytics struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Summary AnalyticsBucket `json:"summary"`
	ByDay   []AnalyticsDay  `json:"byDay"`
}

// SupplierStats 广告主概览
type SupplierStats struct {
	OffersCount int64        `json:"offersCount"`
	Clicks      int64        `json:"clicks"`
	Leads       int64        `json:"leads"`
	Sales       int64        `json:"sales"`
	TotalPayout models.Money `json:"totalPayout"`
}

// AdminDashboard 管理端仪表盘
type AdminDashboard struct {
	Users struct {
		Affiliates int64 `json:"affiliates"`
		Suppliers  int64 `json:"suppliers"`
		Admins     int64 `json:"admins"`
	} `json:"users"`
	Offers struct {
		Active int64 `json:"active"`
		Draft  int64 `json:"draft"`
		Total  int64 `json:"total"`
	} `json:"offers"`
	Moderation struct {
		ParticipationsPending int64 `json:"participationsPending"`
	} `json:"moderation"`
	Events struct {
		Pending  int64 `json:"pending"`
		Approved int64 `json:"approved"`
		Rejected int64 `json:"rejected"`
	} `json:"events"`
	Payouts struct {
		PendingCount int64        `json:"pendingCount"`
		PaidSum      models.Money `json:"paidSum"`
	} `json:"payouts"`
}

// StatsService 统计与报表
type StatsService struct {
	userRepo          repository.UserRepository
	offerRepo         repository.OfferRepository
	linkRepo          repository.TrackingLinkRepository
	eventRepo         repository.EventRepository
	payoutRepo        repository.PayoutRepository
	participationRepo repository.ParticipationRepository
	dashboardRepo     repository.DashboardRepository
	earnings          *EarningsService
}

// NewStatsService 创建统计服务
func NewStatsService(
	userRepo repository.UserRepository,
	offerRepo repository.OfferRepository,
	linkRepo repository.TrackingLinkRepository,
	eventRepo repository.EventRepository,
	payoutRepo repository.PayoutRepository,
	participationRepo repository.ParticipationRepository,
	dashboardRepo repository.DashboardRepository,
	earnings *EarningsService,
) *StatsService {
	return &StatsService{
		userRepo:          userRepo,
		offerRepo:         offerRepo,
		linkRepo:          linkRepo,
		eventRepo:         eventRepo,
		payoutRepo:        payoutRepo,
		participationRepo: participationRepo,
		dashboardRepo:     dashboardRepo,
		earnings:          earnings,
	}
}

// AffiliateStats 推广者概览（earned 计入冻结期）
func (s *StatsService) AffiliateStats(affiliateID uint) (*AffiliateStats, error) {
	linkIDs, err := s.linkRepo.ListIDsByAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	counts, err := s.eventRepo.CountByType(linkIDs, nil, nil)
	if err != nil {
		return nil, err
	}
	earned, err := s.earnings.EarnedWithHold(linkIDs, s.earnings.Now())
	if err != nil {
		return nil, err
	}
	paid, err := s.payoutRepo.SumByAffiliate(affiliateID, []string{constants.PayoutStatusPaid})
	if err != nil {
		return nil, err
	}
	connected, err := s.participationRepo.CountApprovedByAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	return &AffiliateStats{
		Clicks:          counts[constants.EventTypeClick],
		Leads:           counts[constants.EventTypeLead],
		Sales:           counts[constants.EventTypeSale],
		Earned:          models.NewMoneyFromDecimal(earned),
		PaidOut:         models.NewMoneyFromDecimal(paid),
		ConnectedOffers: connected,
	}, nil
}

// ResolveAnalyticsRange 归一化时间范围：from 取当天 00:00，to 取当天 23:59:59.999
func ResolveAnalyticsRange(query AnalyticsQuery, now time.Time) (time.Time, time.Time, error) {
	to := now
	if query.To != nil {
		to = *query.To
	}
	from := to.Add(-defaultAnalyticsRangeDays * 24 * time.Hour)
	if query.From != nil {
		from = *query.From
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(999*time.Millisecond), to.Location())
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrAnalyticsRangeInvalid
	}
	return from, to, nil
}

// AffiliateAnalytics 推广者分析报表
// earned 统计范围内已确认且与计费模型匹配的转化，不考虑冻结期
func (s *StatsService) AffiliateAnalytics(affiliateID uint, query AnalyticsQuery) (*AffiliateAnalytics, error) {
	from, to, err := ResolveAnalyticsRange(query, s.earnings.Now())
	if err != nil {
		return nil, err
	}
	result := &AffiliateAnalytics{From: from, To: to, ByDay: []AnalyticsDay{}}
	linkIDs, err := s.linkRepo.ListIDsByAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	if len(linkIDs) == 0 {
		return result, nil
	}
	rows, err := s.eventRepo.ListConversions(repository.ConversionQuery{
		LinkIDs:       linkIDs,
		From:          &from,
		To:            &to,
		IncludeClicks: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list analytics events: %w", err)
	}

	type accumulator struct {
		clicks, leads, sales int64
		earned               decimal.Decimal
	}
	summary := accumulator{earned: decimal.Zero}
	byDay := map[string]*accumulator{}
	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := byDay[day]
		if !ok {
			bucket = &accumulator{earned: decimal.Zero}
			byDay[day] = bucket
		}
		switch row.EventType {
		case constants.EventTypeClick:
			bucket.clicks++
			summary.clicks++
		case constants.EventTypeLead:
			bucket.leads++
			summary.leads++
		case constants.EventTypeSale:
			bucket.sales++
			summary.sales++
		}
		if row.Status == constants.EventStatusApproved && row.Amount != nil && countsTowardEarnings(row.PayoutModel, row.EventType) {
			bucket.earned = bucket.earned.Add(row.Amount.Decimal)
			summary.earned = summary.earned.Add(row.Amount.Decimal)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		b := byDay[day]
		result.ByDay = append(result.ByDay, AnalyticsDay{
			Date: day,
			AnalyticsBucket: AnalyticsBucket{
				Clicks: b.clicks,
				Leads:  b.leads,
				Sales:  b.sales,
				Earned: models.NewMoneyFromDecimal(b.earned),
			},
		})
	}
	result.Summary = AnalyticsBucket{
		Clicks: summary.clicks,
		Leads:  summary.leads,
		Sales:  summary.sales,
		Earned: models.NewMoneyFromDecimal(summary.earned),
	}
	return result, nil
}

// SupplierStats 广告主概览，totalPayout 为已确认销售金额
func (s *StatsService) SupplierStats(supplierID uint) (*SupplierStats, error) {
	offerIDs, err := s.offerRepo.ListIDsBySupplier(supplierID)
	if err != nil {
		return nil, err
	}
	linkIDs, err := s.linkRepo.ListIDsByOffers(offerIDs)
	if err != nil {
		return nil, err
	}
	counts, err := s.eventRepo.CountByType(linkIDs, nil, nil)
	if err != nil {
		return nil, err
	}
	total, err := s.eventRepo.SumApprovedSalesByLinks(linkIDs)
	if err != nil {
		return nil, err
	}
	return &SupplierStats{
		OffersCount: int64(len(offerIDs)),
		Clicks:      counts[constants.EventTypeClick],
		Leads:       counts[constants.EventTypeLead],
		Sales:       counts[constants.EventTypeSale],
		TotalPayout: models.NewMoneyFromDecimal(total),
	}, nil
}

// AdminDashboard 管理端仪表盘
func (s *StatsService) AdminDashboard() (*AdminDashboard, error) {
	row, err := s.dashboardRepo.GetOverview()
	if err != nil {
		return nil, err
	}
	result := &AdminDashboard{}
	result.Users.Affiliates = row.UsersByRole[constants.RoleAffiliate]
	result.Users.Suppliers = row.UsersByRole[constants.RoleSupplier]
	result.Users.Admins = row.UsersByRole[constants.RoleAdmin]
	result.Offers.Active = row.OffersByStatus[constants.OfferStatusActive]
	result.Offers.Draft = row.OffersByStatus[constants.OfferStatusDraft]
	result.Offers.Total = row.OffersTotal
	result.Moderation.ParticipationsPending = row.ParticipationsPending
	result.Events.Pending = row.ConversionsByStatus[constants.EventStatusPending]
	result.Events.Approved = row.ConversionsByStatus[constants.EventStatusApproved]
	result.Events.Rejected = row.ConversionsByStatus[constants.EventStatusRejected]
	result.Payouts.PendingCount = row.PayoutsPending
	result.Payouts.PaidSum = models.NewMoneyFromDecimal(row.PayoutsPaidSum)
	return result, nil
}

// ListUsers 管理端用户列表
func (s *StatsService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFilterInvalid, err)
	}
	return s.userRepo.List(filter)
}
