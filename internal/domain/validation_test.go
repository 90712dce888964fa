package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateTripName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateTripName("Lisbon 2026"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateTripName("   ")
		if !errors.Is(err, ErrInvalidTripName) {
			t.Fatalf("expected ErrInvalidTripName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxTripNameLength+1)
		err := ValidateTripName(tooLong)
		if !errors.Is(err, ErrInvalidTripName) {
			t.Fatalf("expected ErrInvalidTripName, got %v", err)
		}
	})
}

func TestNormalizeCurrency(t *testing.T) {
	t.Parallel()

	got, err := NormalizeCurrency(" eur ")
	if err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}
	if got != "EUR" {
		t.Fatalf("expected EUR, got %q", got)
	}

	if _, err := NormalizeCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	if _, err := NormalizeCurrency("EURO"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency for 4 letters, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.RequireFromString("100.25")); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("10.500")); err != nil {
		t.Fatalf("expected trailing zeros to be accepted, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.001")); !errors.Is(err, ErrInvalidPrecision) {
		t.Fatalf("expected ErrInvalidPrecision, got %v", err)
	}

	huge := decimal.RequireFromString(MaxExpenseAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidatePercent(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"0", "100", "33.3333", "12.50"} {
		if err := ValidatePercent(decimal.RequireFromString(ok)); err != nil {
			t.Errorf("%s: unexpected error %v", ok, err)
		}
	}

	if err := ValidatePercent(decimal.RequireFromString("33.33333")); !errors.Is(err, ErrInvalidPrecision) {
		t.Fatalf("expected ErrInvalidPrecision, got %v", err)
	}
	for _, bad := range []string{"-1", "100.01"} {
		if err := ValidatePercent(decimal.RequireFromString(bad)); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	if err := ValidateDescription("note", "Dinner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := ValidateDescription("note", strings.Repeat("x", MaxDescriptionLength+1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSplitType_IsValid(t *testing.T) {
	t.Parallel()

	for _, st := range []SplitType{SplitTypeEqual, SplitTypeExact, SplitTypePercentage} {
		if !st.IsValid() {
			t.Fatalf("expected %q to be valid", st)
		}
	}

	if SplitType("shares").IsValid() {
		t.Fatal("expected unknown split type to be invalid")
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("ana@example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}
	if err := ValidateEmail(""); err != nil {
		t.Fatalf("expected empty email to be allowed, got %v", err)
	}
	if err := ValidateEmail("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{10, 5, 10, 5},
		{5000, -1, 200, 0},
	}

	for _, tt := range tests {
		limit, offset := ValidatePagination(tt.limit, tt.offset)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("ValidatePagination(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}
