package repository

import (
	"testing"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/models"
)

func TestUpsertByPairKeepsOriginalToken(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewTrackingLinkRepository(db)
	supplier := createUser(t, db, "s@example.com", constants.RoleSupplier)
	aff := createUser(t, db, "a@example.com", constants.RoleAffiliate)
	offer := createOffer(t, db, supplier.ID, constants.PayoutModelCPA, 100, constants.OfferStatusActive)

	first, err := repo.UpsertByPair(&models.TrackingLink{OfferID: offer.ID, AffiliateID: aff.ID, Token: "tk-first"})
	if err != nil || first == nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := repo.UpsertByPair(&models.TrackingLink{OfferID: offer.ID, AffiliateID: aff.ID, Token: "tk-second"})
	if err != nil || second == nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID || second.Token != "tk-first" {
		t.Fatalf("upsert must keep the issued token: first=%+v second=%+v", first, second)
	}

	var count int64
	db.Model(&models.TrackingLink{}).Count(&count)
	if count != 1 {
		t.Fatalf("want single link got %d", count)
	}

	byToken, err := repo.GetByToken("tk-first")
	if err != nil || byToken == nil || byToken.Offer == nil || byToken.Offer.LandingURL == "" {
		t.Fatalf("lookup by token should preload offer: %+v err=%v", byToken, err)
	}
	missing, err := repo.GetByToken("tk-missing")
	if err != nil || missing != nil {
		t.Fatalf("unknown token should return nil,nil: %+v err=%v", missing, err)
	}
}
