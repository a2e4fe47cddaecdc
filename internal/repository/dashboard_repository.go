package repository

import (
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository 管理端仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview() (DashboardOverviewRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	UsersByRole           map[string]int64
	OffersByStatus        map[string]int64
	OffersTotal           int64
	ParticipationsPending int64
	ConversionsByStatus   map[string]int64
	PayoutsPending        int64
	PayoutsPaidSum        decimal.Decimal
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

type groupCountRow struct {
	GroupKey string
	Total    int64
}

func (r *GormDashboardRepository) groupCount(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCountRow
	if err := query.Select(column + " AS group_key, COUNT(*) AS total").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.GroupKey] = row.Total
	}
	return result, nil
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview() (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}
	var err error

	if result.UsersByRole, err = r.groupCount(r.db.Model(&models.User{}).Where("status = ?", constants.UserStatusActive), "role"); err != nil {
		return result, err
	}
	if result.OffersByStatus, err = r.groupCount(r.db.Model(&models.Offer{}), "status"); err != nil {
		return result, err
	}
	for _, count := range result.OffersByStatus {
		result.OffersTotal += count
	}
	if err := r.db.Model(&models.AffiliateOfferParticipation{}).
		Where("status = ?", constants.ParticipationStatusPending).
		Count(&result.ParticipationsPending).Error; err != nil {
		return result, err
	}
	conversions := r.db.Model(&models.Event{}).
		Where("event_type IN ?", []string{constants.EventTypeLead, constants.EventTypeSale})
	if result.ConversionsByStatus, err = r.groupCount(conversions, "status"); err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Payout{}).
		Where("status IN ?", []string{constants.PayoutStatusPending, constants.PayoutStatusProcessing}).
		Count(&result.PayoutsPending).Error; err != nil {
		return result, err
	}

	var paid struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Payout{}).
		Where("status = ?", constants.PayoutStatusPaid).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&paid).Error; err != nil {
		return result, err
	}
	result.PayoutsPaidSum = paid.Total.Round(2)
	return result, nil
}
