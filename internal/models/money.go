package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 金额，存储与 JSON 输出都固定两位小数（"1500.00"）
type Money struct {
	decimal.Decimal
}

func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MoneyPtr 可空金额字段使用
func MoneyPtr(amount decimal.Decimal) *Money {
	m := NewMoneyFromDecimal(amount)
	return &m
}

// DecimalOrZero nil 视为 0
func (m *Money) DecimalOrZero() decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return m.Decimal
}

func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 同时接受 "10.5" 与 10.5
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid money %q: %w", raw, err)
	}
	*m = NewMoneyFromDecimal(amount)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan NULL 读作 0
func (m *Money) Scan(value interface{}) error {
	var amount decimal.Decimal
	if value != nil {
		if err := amount.Scan(value); err != nil {
			return err
		}
	}
	*m = NewMoneyFromDecimal(amount)
	return nil
}
