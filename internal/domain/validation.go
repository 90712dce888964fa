package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidTripName  = errors.New("invalid trip name")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrInvalidPrecision = errors.New("amount has too many decimal places")
	ErrInvalidEmail     = errors.New("invalid email format")
)

// Validation constants
const (
	MaxTripNameLength    = 255
	MaxDescriptionLength = 1000
	MaxExpenseAmount     = "1000000000" // 1 billion
	MaxAmountPlaces      = 2
	MaxPercentPlaces     = 4
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "THB": true, "TRY": true, "HKD": true,
	"IDR": true, "AED": true, "VND": true, "PHP": true,
}

// ValidateTripName validates a trip name.
func ValidateTripName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidTripName)
	}

	if len(name) > MaxTripNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidTripName, MaxTripNameLength)
	}

	return nil
}

// NormalizeCurrency upper-cases and validates a currency code.
func NormalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if len(currency) != 3 || !validCurrencies[currency] {
		return "", fmt.Errorf("%w: %q is not a supported ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return currency, nil
}

// ValidateAmount validates an expense or payment amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if err := ValidatePrecision(amount); err != nil {
		return err
	}

	maxAmount, _ := decimal.NewFromString(MaxExpenseAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxExpenseAmount)
	}

	return nil
}

// ValidatePrecision rejects amounts with more than MaxAmountPlaces significant
// decimal places. Trailing zeros do not count.
func ValidatePrecision(amount decimal.Decimal) error {
	if amount.Exponent() < -MaxAmountPlaces && !amount.Equal(amount.Truncate(MaxAmountPlaces)) {
		return fmt.Errorf("%w: at most %d decimal places are allowed", ErrInvalidPrecision, MaxAmountPlaces)
	}
	return nil
}

// ValidatePercent checks a split percentage lies in [0, 100] with at most
// MaxPercentPlaces decimal places.
func ValidatePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: percentage %s is outside 0..100", ErrInvalidInput, pct.String())
	}
	if pct.Exponent() < -MaxPercentPlaces && !pct.Equal(pct.Truncate(MaxPercentPlaces)) {
		return fmt.Errorf("%w: percentages allow at most %d decimal places", ErrInvalidPrecision, MaxPercentPlaces)
	}
	return nil
}

// ValidateDescription validates free-text descriptions and notes.
func ValidateDescription(field, value string) error {
	if len(value) > MaxDescriptionLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, MaxDescriptionLength)
	}
	return nil
}

// ValidateEmail validates email format. Empty is allowed.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 200
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
