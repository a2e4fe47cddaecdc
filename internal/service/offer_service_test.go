package service

import (
	"context"
	"errors"
	"testing"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/repository"

	"github.com/shopspring/decimal"
)

func TestCreateOfferDefaults(t *testing.T) {
	env := setupServiceTest(t)
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)

	offer, err := env.offers.CreateOffer(supplier.ID, CreateOfferInput{
		Title:        "  Shoes  ",
		LandingURL:   "https://shop.example.com/shoes",
		PayoutAmount: decimalPtr(120),
	})
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	if offer.Status != constants.OfferStatusDraft || offer.PayoutModel != constants.PayoutModelCPA {
		t.Fatalf("unexpected defaults: status=%s model=%s", offer.Status, offer.PayoutModel)
	}
	if offer.Title != "Shoes" || offer.Currency != constants.DefaultCurrency {
		t.Fatalf("unexpected offer: %+v", offer)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	env := setupServiceTest(t)
	negativeDays := -1
	negative := decimal.NewFromInt(-10)
	cases := []struct {
		name  string
		input CreateOfferInput
		want  error
	}{
		{name: "empty_title", input: CreateOfferInput{LandingURL: "https://a.example.com"}, want: ErrOfferInvalid},
		{name: "bad_url", input: CreateOfferInput{Title: "x", LandingURL: "not a url"}, want: ErrLandingURLInvalid},
		{name: "ftp_url", input: CreateOfferInput{Title: "x", LandingURL: "ftp://a.example.com"}, want: ErrLandingURLInvalid},
		{name: "bad_model", input: CreateOfferInput{Title: "x", LandingURL: "https://a.example.com", PayoutModel: "CPM"}, want: ErrOfferPayoutModelInvalid},
		{name: "negative_payout", input: CreateOfferInput{Title: "x", LandingURL: "https://a.example.com", PayoutAmount: &negative}, want: ErrOfferInvalid},
		{name: "negative_hold", input: CreateOfferInput{Title: "x", LandingURL: "https://a.example.com", HoldDays: &negativeDays}, want: ErrOfferInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.offers.CreateOffer(1, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateOfferOwnership(t *testing.T) {
	env := setupServiceTest(t)
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)
	other := createTestUser(t, env.db, "o@example.com", constants.RoleSupplier)
	offer := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100)

	title := "Renamed"
	caps := 5
	updated, err := env.offers.UpdateOffer(context.Background(), supplier.ID, offer.ID, UpdateOfferInput{Title: &title, CapConversions: &caps})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.CapConversions == nil || *updated.CapConversions != 5 {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if !updated.PayoutAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("nil fields must stay unchanged, got %s", updated.PayoutAmount.String())
	}
	if _, err := env.offers.UpdateOffer(context.Background(), other.ID, offer.ID, UpdateOfferInput{Title: &title}); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("want not found got %v", err)
	}
}

func TestUpdateOfferStatus(t *testing.T) {
	env := setupServiceTest(t)
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)
	offer := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100, withStatus(constants.OfferStatusDraft))

	updated, err := env.offers.UpdateOfferStatus(context.Background(), supplier.ID, offer.ID, "Active")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if updated.Status != constants.OfferStatusActive {
		t.Fatalf("want active got %s", updated.Status)
	}
	if _, err := env.offers.UpdateOfferStatus(context.Background(), supplier.ID, offer.ID, "archived"); !errors.Is(err, ErrOfferStatusInvalid) {
		t.Fatalf("want status invalid got %v", err)
	}
}

func TestPublicOffersHideDraftAndClosed(t *testing.T) {
	env := setupServiceTest(t)
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)
	active := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100)
	createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPL, 10, withStatus(constants.OfferStatusPaused))
	draft := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100, withStatus(constants.OfferStatusDraft))
	createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100, withStatus(constants.OfferStatusClosed))

	items, total, err := env.offers.ListPublicOffers(repository.OfferListFilter{})
	if err != nil {
		t.Fatalf("list public offers failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("want active+paused only, got total=%d", total)
	}
	if _, _, err := env.offers.ListPublicOffers(repository.OfferListFilter{Statuses: []string{constants.OfferStatusDraft}}); !errors.Is(err, ErrFilterInvalid) {
		t.Fatalf("draft filter must be rejected publicly, got %v", err)
	}

	if _, err := env.offers.GetPublicOffer(context.Background(), active.ID); err != nil {
		t.Fatalf("get active offer failed: %v", err)
	}
	if _, err := env.offers.GetPublicOffer(context.Background(), draft.ID); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("draft offer must be hidden, got %v", err)
	}

	all, adminTotal, err := env.offers.ListOffers(repository.OfferListFilter{})
	if err != nil || adminTotal != 4 || len(all) != 4 {
		t.Fatalf("admin should see all offers: total=%d err=%v", adminTotal, err)
	}
}
