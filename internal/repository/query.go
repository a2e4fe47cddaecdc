package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// findOne 返回第一条匹配记录，不存在时返回 nil, nil
func findOne[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	err := query.First(&row, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// findByID id 为 0 时视为不存在
func findByID[T any](query *gorm.DB, id uint) (*T, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[T](query, id)
}

// findAll 按条件取全部记录，结果为空时返回空切片
func findAll[T any](query *gorm.DB) ([]T, error) {
	rows := []T{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// findPage 先计数再取当前页
func findPage[T any](query *gorm.DB, page, pageSize int, order string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows, err := findAll[T](query.Scopes(scopes...).Scopes(paginate(page, pageSize)).Order(order))
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// forUpdate 行锁（SELECT ... FOR UPDATE），sqlite 下忽略
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}

// keywordMatch 多列模糊匹配，postgres 下用 ILIKE 忽略大小写
func keywordMatch(keyword string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return db
		}
		dialect := ""
		if db.Dialector != nil {
			dialect = db.Dialector.Name()
		}
		condition, args := likeClause(dialect, "%"+keyword+"%", columns)
		if condition == "" {
			return db
		}
		return db.Where(condition, args...)
	}
}

func likeClause(dialect, pattern string, columns []string) (string, []interface{}) {
	operator := "LIKE"
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		operator = "ILIKE"
	}
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		parts = append(parts, column+" "+operator+" ?")
		args = append(args, pattern)
	}
	return strings.Join(parts, " OR "), args
}

func withOffer(db *gorm.DB) *gorm.DB     { return db.Preload("Offer") }
func withAffiliate(db *gorm.DB) *gorm.DB { return db.Preload("Affiliate") }
func withLinkOffer(db *gorm.DB) *gorm.DB { return db.Preload("TrackingLink.Offer") }
func selectEvents(db *gorm.DB) *gorm.DB  { return db.Select("events.*") }
