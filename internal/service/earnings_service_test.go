package service

import (
	"testing"
	"time"

	"github.com/realcpa-hub/internal/constants"

	"github.com/shopspring/decimal"
)

func TestEarnedWithHoldBoundary(t *testing.T) {
	env := setupServiceTest(t)
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)
	aff := createTestUser(t, env.db, "a@example.com", constants.RoleAffiliate)
	offer := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100, withHoldDays(7))
	link := createTestLink(t, env.db, offer.ID, aff.ID)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestEvent(t, env.db, link.ID, constants.EventTypeSale, constants.EventStatusApproved, 300, created)

	linkIDs := []uint{link.ID}
	before, err := env.earnings.EarnedWithHold(linkIDs, created.Add(7*24*time.Hour-time.Second))
	if err != nil {
		t.Fatalf("earned failed: %v", err)
	}
	if !before.IsZero() {
		t.Fatalf("event inside hold window must not count, got %s", before)
	}
	after, err := env.earnings.EarnedWithHold(linkIDs, created.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("earned failed: %v", err)
	}
	if !after.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("event at hold boundary should count, got %s", after)
	}
}

func TestEarnedMatchesPayoutModel(t *testing.T) {
	env := setupServiceTest(t)
	supplier := createTestUser(t, env.db, "s@example.com", constants.RoleSupplier)
	aff := createTestUser(t, env.db, "a@example.com", constants.RoleAffiliate)
	cpa := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPA, 100)
	cpl := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelCPL, 50)
	rev := createTestOffer(t, env.db, supplier.ID, constants.PayoutModelRevShare, 10)
	cpaLink := createTestLink(t, env.db, cpa.ID, aff.ID)
	cplLink := createTestLink(t, env.db, cpl.ID, aff.ID)
	revLink := createTestLink(t, env.db, rev.ID, aff.ID)

	past := time.Now().Add(-time.Hour)
	createTestEvent(t, env.db, cpaLink.ID, constants.EventTypeLead, constants.EventStatusApproved, 40, past)
	createTestEvent(t, env.db, cpaLink.ID, constants.EventTypeSale, constants.EventStatusApproved, 100, past)
	createTestEvent(t, env.db, cplLink.ID, constants.EventTypeSale, constants.EventStatusApproved, 70, past)
	createTestEvent(t, env.db, cplLink.ID, constants.EventTypeLead, constants.EventStatusApproved, 50, past)
	createTestEvent(t, env.db, revLink.ID, constants.EventTypeSale, constants.EventStatusApproved, 15, past)
	createTestEvent(t, env.db, cpaLink.ID, constants.EventTypeSale, constants.EventStatusPending, 999, past)
	createTestEvent(t, env.db, cpaLink.ID, constants.EventTypeSale, constants.EventStatusRejected, 999, past)
	createTestEvent(t, env.db, cpaLink.ID, constants.EventTypeClick, constants.EventStatusApproved, 0, past)

	earned, err := env.earnings.EarnedForAffiliate(aff.ID)
	if err != nil {
		t.Fatalf("earned failed: %v", err)
	}
	if !earned.Equal(decimal.NewFromInt(165)) {
		t.Fatalf("want 165 got %s", earned)
	}
	again, _ := env.earnings.EarnedForAffiliate(aff.ID)
	if !again.Equal(earned) {
		t.Fatalf("earnings must be stable across calls: %s vs %s", again, earned)
	}
}

func TestEarnedWithoutLinksIsZero(t *testing.T) {
	env := setupServiceTest(t)
	aff := createTestUser(t, env.db, "a@example.com", constants.RoleAffiliate)
	earned, err := env.earnings.EarnedForAffiliate(aff.ID)
	if err != nil {
		t.Fatalf("earned failed: %v", err)
	}
	if !earned.IsZero() {
		t.Fatalf("want zero got %s", earned)
	}
}

func TestCountsTowardEarnings(t *testing.T) {
	cases := []struct {
		model, eventType string
		want             bool
	}{
		{constants.PayoutModelCPA, constants.EventTypeSale, true},
		{constants.PayoutModelCPA, constants.EventTypeLead, false},
		{constants.PayoutModelCPL, constants.EventTypeLead, true},
		{constants.PayoutModelCPL, constants.EventTypeSale, false},
		{constants.PayoutModelRevShare, constants.EventTypeSale, true},
		{constants.PayoutModelRevShare, constants.EventTypeLead, false},
		{"unknown", constants.EventTypeSale, false},
	}
	for _, tc := range cases {
		if got := countsTowardEarnings(tc.model, tc.eventType); got != tc.want {
			t.Fatalf("%s/%s: want %v got %v", tc.model, tc.eventType, tc.want, got)
		}
	}
}
