package service

import (
	"context"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"

	"gorm.io/gorm"
)

// DecideParticipationInput 审核参与申请
type DecideParticipationInput struct {
	ParticipationID uint
	Status          string
	ActorID         uint
	ActorRole       string
}

// MyOfferItem 推广者已申请的 Offer 及追踪地址（未通过时为空）
type MyOfferItem struct {
	models.AffiliateOfferParticipation
	TrackingLink *string `json:"trackingLink"`
}

// ParticipationService 推广者接入 Offer 的申请与审核
type ParticipationService struct {
	participationRepo repository.ParticipationRepository
	offerRepo         repository.OfferRepository
	linkRepo          repository.TrackingLinkRepository
	tokens            TokenGenerator
	trackingSvc       *TrackingService
	notificationSvc   *NotificationService
}

// NewParticipationService 创建参与申请服务
func NewParticipationService(
	participationRepo repository.ParticipationRepository,
	offerRepo repository.OfferRepository,
	linkRepo repository.TrackingLinkRepository,
	tokens TokenGenerator,
	trackingSvc *TrackingService,
	notificationSvc *NotificationService,
) *ParticipationService {
	if tokens == nil {
		tokens = DeterministicTokenGenerator{}
	}
	return &ParticipationService{
		participationRepo: participationRepo,
		offerRepo:         offerRepo,
		linkRepo:          linkRepo,
		tokens:            tokens,
		trackingSvc:       trackingSvc,
		notificationSvc:   notificationSvc,
	}
}

// Join 推广者申请接入，仅 active 的 Offer 可申请
func (s *ParticipationService) Join(affiliateID, offerID uint) (*models.AffiliateOfferParticipation, error) {
	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil || offer.Status != constants.OfferStatusActive {
		return nil, ErrOfferNotFound
	}
	existing, err := s.participationRepo.GetByPair(offerID, affiliateID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrParticipationExists
	}
	now := time.Now()
	participation := &models.AffiliateOfferParticipation{
		OfferID:     offerID,
		AffiliateID: affiliateID,
		Status:      constants.ParticipationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.participationRepo.Create(participation); err != nil {
		// 并发重复申请撞唯一索引
		if again, getErr := s.participationRepo.GetByPair(offerID, affiliateID); getErr == nil && again != nil {
			return nil, ErrParticipationExists
		}
		return nil, err
	}
	participation.Offer = offer
	return participation, nil
}

// Decide 审核申请（一次性），通过时按令牌策略生成追踪链接
func (s *ParticipationService) Decide(ctx context.Context, input DecideParticipationInput) (*models.AffiliateOfferParticipation, error) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != constants.ParticipationStatusApproved && status != constants.ParticipationStatusRejected {
		return nil, ErrParticipationStatusInvalid
	}

	var (
		participation *models.AffiliateOfferParticipation
		link          *models.TrackingLink
	)
	err := s.participationRepo.Transaction(func(tx *gorm.DB) error {
		current, err := s.participationRepo.WithTx(tx).GetByIDForUpdate(input.ParticipationID)
		if err != nil {
			return err
		}
		if current == nil || current.Offer == nil {
			return ErrParticipationNotFound
		}
		if input.ActorRole != constants.RoleAdmin && current.Offer.SupplierID != input.ActorID {
			return ErrParticipationNotFound
		}
		if current.Status != constants.ParticipationStatusPending {
			return ErrParticipationAlreadyDecided
		}
		now := time.Now()
		if err := s.participationRepo.WithTx(tx).UpdateDecision(current.ID, status, now); err != nil {
			return err
		}
		current.Status = status
		current.DecidedAt = &now
		current.UpdatedAt = now

		if status == constants.ParticipationStatusApproved {
			link, err = s.linkRepo.WithTx(tx).UpsertByPair(&models.TrackingLink{
				OfferID:     current.OfferID,
				AffiliateID: current.AffiliateID,
				Token:       s.tokens.Generate(current.AffiliateID, current.OfferID),
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
		}
		participation = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("participation_decided",
		"participation_id", participation.ID,
		"status", status,
		"actor_id", input.ActorID,
		"actor_role", input.ActorRole,
	)
	if link != nil {
		logger.Infow("tracking_link_issued", "tracking_link_id", link.ID, "offer_id", link.OfferID, "affiliate_id", link.AffiliateID)
	}
	s.notifyDecision(ctx, participation, link)
	return participation, nil
}

// ListOfferAffiliates 广告主查看自己 Offer 下的申请
func (s *ParticipationService) ListOfferAffiliates(offerID, supplierID uint) ([]models.AffiliateOfferParticipation, error) {
	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil || offer.SupplierID != supplierID {
		return nil, ErrOfferNotFound
	}
	return s.participationRepo.ListByOffer(offerID)
}

// ListPending 管理端待审核申请
func (s *ParticipationService) ListPending() ([]models.AffiliateOfferParticipation, error) {
	return s.participationRepo.ListPending(100)
}

// MyOffers 推广者的申请列表及追踪地址
func (s *ParticipationService) MyOffers(affiliateID uint) ([]MyOfferItem, error) {
	participations, err := s.participationRepo.ListByAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	links, err := s.linkRepo.ListByAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	tokenByOffer := make(map[uint]string, len(links))
	for _, link := range links {
		tokenByOffer[link.OfferID] = link.Token
	}
	items := make([]MyOfferItem, 0, len(participations))
	for _, p := range participations {
		item := MyOfferItem{AffiliateOfferParticipation: p}
		if token, ok := tokenByOffer[p.OfferID]; ok && s.trackingSvc != nil {
			url := s.trackingSvc.TrackingLinkURL(token)
			item.TrackingLink = &url
		}
		items = append(items, item)
	}
	return items, nil
}

// notifyDecision 通过时正文附带追踪地址
func (s *ParticipationService) notifyDecision(ctx context.Context, participation *models.AffiliateOfferParticipation, link *models.TrackingLink) {
	if s.notificationSvc == nil {
		return
	}
	notificationType := constants.NotificationTypeParticipationRejected
	if participation.Status == constants.ParticipationStatusApproved {
		notificationType = constants.NotificationTypeParticipationApproved
	}
	title := ""
	if participation.Offer != nil {
		title = participation.Offer.Title
	}
	args := []interface{}{title}
	if notificationType == constants.NotificationTypeParticipationApproved {
		trackingURL := ""
		if link != nil && s.trackingSvc != nil {
			trackingURL = s.trackingSvc.TrackingLinkURL(link.Token)
		}
		args = append(args, trackingURL)
	}
	s.notificationSvc.Notify(ctx, NotifyInput{
		UserID:   participation.AffiliateID,
		Type:     notificationType,
		TitleKey: "notification." + notificationType + ".title",
		BodyKey:  "notification." + notificationType + ".body",
		BodyArgs: args,
		Link:     "/affiliate/my-offers",
	})
}
