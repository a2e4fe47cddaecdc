package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/repository"
)

func TestAffiliateProfileUpsert(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewProfileService(repository.NewProfileRepository(env.db))
	aff := createTestUser(t, env.db, "a@example.com", constants.RoleAffiliate)

	if _, err := svc.GetAffiliateProfile(aff.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("want profile not found got %v", err)
	}

	details := json.RawMessage(`{"method": "card", "card": "****1234"}`)
	notify := true
	created, err := svc.UpdateAffiliateProfile(aff.ID, AffiliateProfileInput{PayoutDetails: &details, NotifyPayouts: &notify})
	if err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	if created.ID == 0 || created.PayoutDetails != `{"card":"****1234","method":"card"}` || created.NotifyPayouts == nil || !*created.NotifyPayouts {
		t.Fatalf("unexpected profile: %+v", created)
	}

	plain := json.RawMessage(`" IBAN DE00 "`)
	notes := " top traffic "
	updated, err := svc.UpdateAffiliateProfile(aff.ID, AffiliateProfileInput{PayoutDetails: &plain, Notes: &notes})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.ID != created.ID || updated.PayoutDetails != "IBAN DE00" || updated.Notes != "top traffic" || updated.NotifyPayouts == nil {
		t.Fatalf("update should keep the row and untouched fields: %+v", updated)
	}

	bad := json.RawMessage(`42`)
	if _, err := svc.UpdateAffiliateProfile(aff.ID, AffiliateProfileInput{PayoutDetails: &bad}); !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("want profile invalid got %v", err)
	}

	cleared := json.RawMessage(`null`)
	got, err := svc.UpdateAffiliateProfile(aff.ID, AffiliateProfileInput{PayoutDetails: &cleared})
	if err != nil || got.PayoutDetails != "" {
		t.Fatalf("null should clear payout details: %+v err=%v", got, err)
	}
}

func TestSupplierProfileUpsert(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewProfileService(repository.NewProfileRepository(env.db))
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)

	inn := "7700000000"
	created, err := svc.UpdateSupplierProfile(supplier.ID, SupplierProfileInput{INN: &inn})
	if err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	if created.LegalEntity != "—" || created.INN != inn {
		t.Fatalf("unexpected profile: %+v", created)
	}

	website := "ftp://shop.example.com"
	if _, err := svc.UpdateSupplierProfile(supplier.ID, SupplierProfileInput{Website: &website}); !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("want profile invalid got %v", err)
	}

	legal := "OOO Shop"
	website = "https://shop.example.com"
	if _, err := svc.UpdateSupplierProfile(supplier.ID, SupplierProfileInput{LegalEntity: &legal, Website: &website}); err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	got, err := svc.GetSupplierProfile(supplier.ID)
	if err != nil || got.ID != created.ID || got.LegalEntity != legal || got.INN != inn || got.Website != website {
		t.Fatalf("unexpected stored profile: %+v err=%v", got, err)
	}
}
