package constants

// 用户角色常量
const (
	RoleAffiliate = "affiliate"
	RoleSupplier  = "supplier"
	RoleAdmin     = "admin"
)

// 用户状态常量
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// 计费模型常量
const (
	PayoutModelCPA      = "CPA"
	PayoutModelCPL      = "CPL"
	PayoutModelRevShare = "RevShare"
)

// Offer 状态常量
const (
	OfferStatusDraft  = "draft"
	OfferStatusActive = "active"
	OfferStatusPaused = "paused"
	OfferStatusClosed = "closed"
)

// 参与申请状态常量
const (
	ParticipationStatusPending  = "pending"
	ParticipationStatusApproved = "approved"
	ParticipationStatusRejected = "rejected"
)

// 事件类型常量
const (
	EventTypeClick = "click"
	EventTypeLead  = "lead"
	EventTypeSale  = "sale"
)

// 事件状态常量
const (
	EventStatusPending  = "pending"
	EventStatusApproved = "approved"
	EventStatusRejected = "rejected"
)

// 结算单状态常量
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
	PayoutStatusCanceled   = "canceled"
)

// 站内通知类型常量
const (
	NotificationTypeParticipationApproved = "participation_approved"
	NotificationTypeParticipationRejected = "participation_rejected"
	NotificationTypePayoutPaid            = "payout_paid"
	NotificationTypeSystem                = "system"
)

// 追踪令牌策略
const (
	TokenStrategyDeterministic = "deterministic"
	TokenStrategyRandom        = "random"
)

// 默认结算参数
const (
	DefaultCurrency        = "RUB"
	DefaultMinPayoutAmount = "1000"
)

// 领域事件名称
const (
	DomainEventEventCreated        = "event.created"
	DomainEventEventModerated      = "event.moderated"
	DomainEventPayoutStatusChanged = "payout.status_changed"
)

// 队列与任务常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskNotificationEmail = "notification:email"
)
