package payment

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"kantin/internal/apperr"
)

// MaxItemNameLength is the longest item name the gateway accepts.
const MaxItemNameLength = 50

// RoundAmount rounds to the nearest whole currency unit; the gateway rejects fractions.
func RoundAmount(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(0).IntPart()
}

// ParseGrossAmount parses the gateway's string amount, e.g. "30000.00".
func ParseGrossAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("gross_amount %q is not a number: %w", raw, apperr.ErrInvalidInput)
	}
	return d, nil
}

// TruncateName clips name to MaxItemNameLength characters.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxItemNameLength {
		return name
	}
	runes := []rune(name)
	return string(runes[:MaxItemNameLength])
}

// CheckGrossAmount compares the gateway's string amount with the whole-unit
// amount that was charged.
func CheckGrossAmount(raw string, charged int64) error {
	gross, err := ParseGrossAmount(raw)
	if err != nil {
		return err
	}
	if !gross.Equal(decimal.NewFromInt(charged)) {
		return fmt.Errorf("gross_amount %s does not match the %d charged: %w", raw, charged, apperr.ErrInvalidInput)
	}
	return nil
}
