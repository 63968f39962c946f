package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/shiftboard-backend/internal/pkg/apperror"
)

const DefaultCurrency = "SEK"

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, apperror.New(apperror.ErrCodeValidation, "сумма не может быть отрицательной")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Rounded округляет до öre.
func (m Money) Rounded() Money {
	return Money{Amount: m.Amount.Round(2), Currency: m.Currency}
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

// NewHourlyRate проверяет, что ставка положительна.
func NewHourlyRate(rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, apperror.New(apperror.ErrCodeValidation, "почасовая ставка должна быть положительной")
	}
	return rate, nil
}
