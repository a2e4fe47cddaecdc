package service

import (
	"context"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"
	"github.com/realcpa-hub/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// ClickMeta 点击请求元信息（仅记录日志）
type ClickMeta struct {
	IP        string
	UserAgent string
	Referer   string
}

// TrackingService 追踪链接解析服务
type TrackingService struct {
	linkRepo  repository.TrackingLinkRepository
	eventRepo repository.EventRepository
	baseURL   string
}

// NewTrackingService 创建追踪服务
func NewTrackingService(linkRepo repository.TrackingLinkRepository, eventRepo repository.EventRepository, baseURL string) *TrackingService {
	return &TrackingService{
		linkRepo:  linkRepo,
		eventRepo: eventRepo,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// Resolve 解析令牌并记录一次已确认点击，返回落地页地址
// 每次调用都会新增一条点击，不做去重
func (s *TrackingService) Resolve(ctx context.Context, token string, meta ClickMeta) (landingURL string, event *models.Event, err error) {
	_, span := telemetry.StartSpan(ctx, "tracking.resolve")
	defer func() { telemetry.EndSpan(span, err) }()

	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, ErrTrackingLinkNotFound
	}
	link, err := s.linkRepo.GetByToken(token)
	if err != nil {
		return "", nil, err
	}
	if link == nil || link.Offer == nil {
		return "", nil, ErrTrackingLinkNotFound
	}
	span.SetAttributes(
		attribute.Int64("tracking_link_id", int64(link.ID)),
		attribute.Int64("offer_id", int64(link.OfferID)),
	)

	event = &models.Event{
		TrackingLinkID: link.ID,
		EventType:      constants.EventTypeClick,
		Currency:       resolveCurrency(link.Offer.Currency),
		Status:         constants.EventStatusApproved,
		CreatedAt:      time.Now(),
	}
	if err := s.eventRepo.Create(event); err != nil {
		return "", nil, err
	}
	logger.Debugw("tracking_click_recorded",
		"tracking_link_id", link.ID,
		"event_id", event.ID,
		"ip", meta.IP,
		"referer", meta.Referer,
	)
	return link.Offer.LandingURL, event, nil
}

// TrackingLinkURL 拼接对外追踪地址
func (s *TrackingService) TrackingLinkURL(token string) string {
	if token == "" {
		return ""
	}
	return s.baseURL + "/t/" + token
}

func resolveCurrency(currency string) string {
	if c := strings.TrimSpace(currency); c != "" {
		return c
	}
	return constants.DefaultCurrency
}
