package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/repository"
)

// AffiliateProfileInput 推广者档案修改，nil 字段保持不变
type AffiliateProfileInput struct {
	PayoutDetails       *json.RawMessage
	TrafficSources      *string
	Notes               *string
	NotifyNews          *bool
	NotifySystem        *bool
	NotifyParticipation *bool
	NotifyPayouts       *bool
}

// SupplierProfileInput 广告主档案修改，nil 字段保持不变
type SupplierProfileInput struct {
	LegalEntity *string
	INN         *string
	KPP         *string
	VatID       *string
	Website     *string
	PayoutTerms *string
}

// ProfileService 推广者与广告主档案
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

func (s *ProfileService) GetAffiliateProfile(userID uint) (*models.AffiliateProfile, error) {
	profile, err := s.profileRepo.GetAffiliateProfile(userID)
	switch {
	case err != nil:
		return nil, err
	case profile == nil:
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateAffiliateProfile 不存在时创建。payoutDetails 可以是 JSON 对象或字符串
func (s *ProfileService) UpdateAffiliateProfile(userID uint, input AffiliateProfileInput) (*models.AffiliateProfile, error) {
	profile, err := s.profileRepo.GetAffiliateProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.AffiliateProfile{UserID: userID}
	}
	if input.PayoutDetails != nil {
		details, err := normalizePayoutDetails(*input.PayoutDetails)
		if err != nil {
			return nil, err
		}
		profile.PayoutDetails = details
	}
	setTrimmed(&profile.TrafficSources, input.TrafficSources)
	setTrimmed(&profile.Notes, input.Notes)
	if input.NotifyNews != nil {
		profile.NotifyNews = input.NotifyNews
	}
	if input.NotifySystem != nil {
		profile.NotifySystem = input.NotifySystem
	}
	if input.NotifyParticipation != nil {
		profile.NotifyParticipation = input.NotifyParticipation
	}
	if input.NotifyPayouts != nil {
		profile.NotifyPayouts = input.NotifyPayouts
	}
	profile.UpdatedAt = time.Now()
	if err := s.profileRepo.SaveAffiliateProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetSupplierProfile(userID uint) (*models.SupplierProfile, error) {
	profile, err := s.profileRepo.GetSupplierProfile(userID)
	switch {
	case err != nil:
		return nil, err
	case profile == nil:
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateSupplierProfile 不存在时创建，法人名称缺省为 "—"
func (s *ProfileService) UpdateSupplierProfile(userID uint, input SupplierProfileInput) (*models.SupplierProfile, error) {
	profile, err := s.profileRepo.GetSupplierProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.SupplierProfile{UserID: userID}
	}
	setTrimmed(&profile.LegalEntity, input.LegalEntity)
	setTrimmed(&profile.INN, input.INN)
	setTrimmed(&profile.KPP, input.KPP)
	setTrimmed(&profile.VatID, input.VatID)
	setTrimmed(&profile.Website, input.Website)
	setTrimmed(&profile.PayoutTerms, input.PayoutTerms)
	if profile.LegalEntity == "" {
		profile.LegalEntity = "—"
	}
	if profile.Website != "" {
		if _, err := normalizeLandingURL(profile.Website); err != nil {
			return nil, ErrProfileInvalid
		}
	}
	profile.UpdatedAt = time.Now()
	if err := s.profileRepo.SaveSupplierProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// normalizePayoutDetails 对象按紧凑 JSON 保存，字符串原样保存，null 清空
func normalizePayoutDetails(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	var value interface{}
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return "", ErrProfileInvalid
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case map[string]interface{}:
		compact, err := json.Marshal(v)
		if err != nil {
			return "", ErrProfileInvalid
		}
		return string(compact), nil
	default:
		return "", ErrProfileInvalid
	}
}
