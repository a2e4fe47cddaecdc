package service

import (
	"context"
	"errors"
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

// EventIngestInput 外部上报线索/销售
type EventIngestInput struct {
	Token          string
	TrackingLinkID uint
	EventType      string
	Amount         *decimal.Decimal
	ExternalID     string
}

// EventModerateInput 审核事件
type EventModerateInput struct {
	EventID   uint
	Status    string
	Amount    *decimal.Decimal
	ActorID   uint
	ActorRole string
}

// EventService 事件上报与审核服务
type EventService struct {
	linkRepo  repository.TrackingLinkRepository
	offerRepo repository.OfferRepository
	eventRepo repository.EventRepository
	publisher eventbus.Publisher
}

// NewEventService 创建事件服务
func NewEventService(
	linkRepo repository.TrackingLinkRepository,
	offerRepo repository.OfferRepository,
	eventRepo repository.EventRepository,
	publisher eventbus.Publisher,
) *EventService {
	return &EventService{
		linkRepo:  linkRepo,
		offerRepo: offerRepo,
		eventRepo: eventRepo,
		publisher: publisher,
	}
}

// eventMessage 领域事件载荷
type eventMessage struct {
	EventID        uint   `json:"event_id"`
	TrackingLinkID uint   `json:"tracking_link_id"`
	OfferID        uint   `json:"offer_id"`
	AffiliateID    uint   `json:"affiliate_id"`
	EventType      string `json:"event_type"`
	Status         string `json:"status"`
	Amount         string `json:"amount,omitempty"`
	Currency       string `json:"currency"`
}

// Ingest 记录一条待审核的线索或销售
// 销售在 Offer 行锁内校验上限，超限时不落库
func (s *EventService) Ingest(ctx context.Context, input EventIngestInput) (event *models.Event, err error) {
	_, span := telemetry.StartSpan(ctx, "event.ingest")
	defer func() { telemetry.EndSpan(span, err) }()

	link, err := s.resolveLink(input)
	if err != nil {
		return nil, err
	}
	// 除 sale 外的类型一律按线索记录
	eventType := constants.EventTypeLead
	if strings.EqualFold(strings.TrimSpace(input.EventType), constants.EventTypeSale) {
		eventType = constants.EventTypeSale
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, ErrEventAmountInvalid
	}
	amount := link.Offer.PayoutAmount.Decimal
	if input.Amount != nil {
		amount = *input.Amount
	}
	span.SetAttributes(
		attribute.String("event_type", eventType),
		attribute.Int64("offer_id", int64(link.OfferID)),
	)

	event = &models.Event{
		TrackingLinkID: link.ID,
		EventType:      eventType,
		Amount:         models.MoneyPtr(amount),
		Currency:       resolveCurrency(link.Offer.Currency),
		Status:         constants.EventStatusPending,
		ExternalID:     strings.TrimSpace(input.ExternalID),
		CreatedAt:      time.Now(),
	}

	if eventType == constants.EventTypeSale {
		err = s.eventRepo.Transaction(func(tx *gorm.DB) error {
			offer, err := s.offerRepo.WithTx(tx).GetByIDForUpdate(link.OfferID)
			if err != nil {
				return err
			}
			if offer == nil {
				return ErrTrackingLinkNotFound
			}
			if err := s.checkCaps(s.eventRepo.WithTx(tx), offer, event.Amount.Decimal); err != nil {
				return err
			}
			return s.eventRepo.WithTx(tx).Create(event)
		})
	} else {
		err = s.eventRepo.Create(event)
	}
	if err != nil {
		if errors.Is(err, ErrCapAmountReached) || errors.Is(err, ErrCapConversionsReached) {
			logger.Infow("event_ingest_cap_rejected",
				"offer_id", link.OfferID,
				"tracking_link_id", link.ID,
				"amount", amount.StringFixed(2),
				"reason", err.Error(),
			)
		}
		return nil, err
	}

	event.TrackingLink = link
	eventbus.Emit(s.publisher, constants.DomainEventEventCreated, strconv.FormatUint(uint64(link.OfferID), 10), buildEventMessage(event, link))
	return event, nil
}

// Moderate 审核线索或销售，结果一次性写入
func (s *EventService) Moderate(ctx context.Context, input EventModerateInput) (event *models.Event, err error) {
	_, span := telemetry.StartSpan(ctx, "event.moderate")
	defer func() { telemetry.EndSpan(span, err) }()

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != constants.EventStatusApproved && status != constants.EventStatusRejected {
		return nil, ErrEventStatusInvalid
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, ErrEventAmountInvalid
	}
	span.SetAttributes(attribute.Int64("event_id", int64(input.EventID)), attribute.String("status", status))

	err = s.eventRepo.Transaction(func(tx *gorm.DB) error {
		eventRepo := s.eventRepo.WithTx(tx)
		current, err := eventRepo.GetByIDForUpdate(input.EventID)
		if err != nil {
			return err
		}
		if current == nil || current.TrackingLink == nil || current.TrackingLink.Offer == nil {
			return ErrEventNotFound
		}
		offer := current.TrackingLink.Offer
		if input.ActorRole != constants.RoleAdmin && offer.SupplierID != input.ActorID {
			return ErrEventNotFound
		}
		if current.EventType == constants.EventTypeClick {
			return ErrEventNotModeratable
		}
		if current.Status != constants.EventStatusPending {
			return ErrEventAlreadyModerated
		}

		var amount *models.Money
		if status == constants.EventStatusApproved {
			resolved := offer.PayoutAmount.Decimal
			switch {
			case input.Amount != nil:
				resolved = *input.Amount
			case current.Amount != nil:
				resolved = current.Amount.Decimal
			}
			amount = models.MoneyPtr(resolved)

			if current.EventType == constants.EventTypeSale {
				locked, err := s.offerRepo.WithTx(tx).GetByIDForUpdate(offer.ID)
				if err != nil {
					return err
				}
				if locked != nil {
					if err := s.checkCaps(eventRepo, locked, resolved); err != nil {
						return err
					}
				}
			}
		}

		now := time.Now()
		rows, err := eventRepo.UpdateModeration(current.ID, status, amount, now)
		if err != nil {
			return fmt.Errorf("update moderation: %w", err)
		}
		if rows == 0 {
			return ErrEventAlreadyModerated
		}
		current.Status = status
		current.ModeratedAt = &now
		if amount != nil {
			current.Amount = amount
		}
		event = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("event_moderated",
		"event_id", event.ID,
		"status", status,
		"actor_id", input.ActorID,
		"actor_role", input.ActorRole,
	)
	eventbus.Emit(s.publisher, constants.DomainEventEventModerated, strconv.FormatUint(uint64(event.TrackingLink.OfferID), 10), buildEventMessage(event, event.TrackingLink))
	return event, nil
}

// ListEvents 事件列表（广告主范围由 filter.SupplierID 限定）
func (s *EventService) ListEvents(filter repository.EventListFilter) ([]models.Event, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFilterInvalid, err)
	}
	return s.eventRepo.List(filter)
}

func (s *EventService) resolveLink(input EventIngestInput) (*models.TrackingLink, error) {
	var (
		link *models.TrackingLink
		err  error
	)
	if token := strings.TrimSpace(input.Token); token != "" {
		link, err = s.linkRepo.GetByToken(token)
		if err != nil {
			return nil, err
		}
	}
	if link == nil && input.TrackingLinkID != 0 {
		link, err = s.linkRepo.GetByID(input.TrackingLinkID)
		if err != nil {
			return nil, err
		}
	}
	if link == nil || link.Offer == nil {
		return nil, ErrEventLinkRequired
	}
	return link, nil
}

// checkCaps 已确认销售汇总 + 本次金额不得超过上限；金额上限优先判断
func (s *EventService) checkCaps(eventRepo repository.EventRepository, offer *models.Offer, amount decimal.Decimal) error {
	if !offer.HasCaps() {
		return nil
	}
	agg, err := eventRepo.SumApprovedSalesByOffer(offer.ID)
	if err != nil {
		return fmt.Errorf("sum approved sales: %w", err)
	}
	if offer.CapAmount != nil && agg.Total.Add(amount).GreaterThan(offer.CapAmount.Decimal) {
		return ErrCapAmountReached
	}
	if offer.CapConversions != nil && agg.Count+1 > int64(*offer.CapConversions) {
		return ErrCapConversionsReached
	}
	return nil
}

func buildEventMessage(event *models.Event, link *models.TrackingLink) eventMessage {
	msg := eventMessage{
		EventID:        event.ID,
		TrackingLinkID: event.TrackingLinkID,
		EventType:      event.EventType,
		Status:         event.Status,
		Currency:       event.Currency,
	}
	if link != nil {
		msg.OfferID = link.OfferID
		msg.AffiliateID = link.AffiliateID
	}
	if event.Amount != nil {
		msg.Amount = event.Amount.String()
	}
	return msg
}
