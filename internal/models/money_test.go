package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyUnmarshalAcceptsStringAndNumber(t *testing.T) {
	var payload struct {
		A Money  `json:"a"`
		B Money  `json:"b"`
		C *Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"10.456","b":2.5,"c":null}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.A.String() != "10.46" {
		t.Fatalf("want 10.46 got %s", payload.A.String())
	}
	if payload.B.String() != "2.50" {
		t.Fatalf("want 2.50 got %s", payload.B.String())
	}
	if payload.C != nil {
		t.Fatalf("null should keep pointer nil")
	}
}

func TestMoneyMarshalFixedScale(t *testing.T) {
	raw, err := json.Marshal(NewMoneyFromDecimal(decimal.NewFromInt(1000)))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"1000.00"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestMoneyDecimalOrZero(t *testing.T) {
	var m *Money
	if !m.DecimalOrZero().IsZero() {
		t.Fatalf("nil money should be zero")
	}
	if !MoneyPtr(decimal.NewFromInt(7)).DecimalOrZero().Equal(decimal.NewFromInt(7)) {
		t.Fatalf("unexpected value")
	}
}

func TestMoneyScanAndValue(t *testing.T) {
	var m Money
	if err := m.Scan("12.345"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("want 12.35 got %s", m.String())
	}
	if err := m.Scan(nil); err != nil || !m.IsZero() {
		t.Fatalf("null should scan to zero: %v", err)
	}
	v, err := NewMoneyFromDecimal(decimal.RequireFromString("3.1")).Value()
	if err != nil || v != "3.10" {
		t.Fatalf("unexpected value: %v %v", v, err)
	}
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("invalid amount should fail")
	}
}
