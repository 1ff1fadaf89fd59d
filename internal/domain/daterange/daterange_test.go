package daterange

import (
	"errors"
	"testing"

	"github.com/auditscope/auditscope/internal/domain"
)

func TestNormalize_BareDates(t *testing.T) {
	b, err := Normalize("2025-07-01", "2025-09-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower != "2025-07-01T00:00:00Z" {
		t.Errorf("lower = %q, want midnight of the from date", b.Lower)
	}
	if b.Upper != "2025-10-01T00:00:00Z" {
		t.Errorf("upper = %q, want midnight of the day after the to date", b.Upper)
	}
}

func TestNormalize_UpperCrossesMonthAndYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-08-31", "2025-09-01T00:00:00Z"},
		{"2025-12-31", "2026-01-01T00:00:00Z"},
		{"2024-02-28", "2024-02-29T00:00:00Z"}, // leap year
	}
	for _, tt := range tests {
		b, err := Normalize("", tt.in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tt.in, err)
		}
		if b.Upper != tt.want {
			t.Errorf("upper(%q) = %q, want %q", tt.in, b.Upper, tt.want)
		}
	}
}

func TestNormalize_AbsentSides(t *testing.T) {
	b, err := Normalize("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower != "" || b.Upper != "" {
		t.Errorf("absent inputs must yield empty bounds, got %+v", b)
	}

	b, err = Normalize("2025-07-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower == "" || b.Upper != "" {
		t.Errorf("one-sided range mishandled: %+v", b)
	}
}

func TestNormalize_FullTimestampRenderedWithZ(t *testing.T) {
	b, err := Normalize("2025-08-12T10:30:00+00:00", "2025-08-14T23:59:59+00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower != "2025-08-12T10:30:00Z" {
		t.Errorf("lower = %q, want Z-suffixed same instant", b.Lower)
	}
	if b.Upper != "2025-08-14T23:59:59Z" {
		t.Errorf("upper = %q, want Z-suffixed same instant, day NOT advanced", b.Upper)
	}
}

func TestNormalize_NonUTCOffsetConvertedToUTC(t *testing.T) {
	b, err := Normalize("2025-08-12T02:00:00+02:00", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower != "2025-08-12T00:00:00Z" {
		t.Errorf("lower = %q, want instant converted to UTC", b.Lower)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	for _, in := range []string{"Q3", "2025-13-01", "20250701", "yesterday"} {
		_, err := Normalize(in, "")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Normalize(%q) err = %v, want ErrValidation", in, err)
		}
		_, err = Normalize("", in)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Normalize(to=%q) err = %v, want ErrValidation", in, err)
		}
	}
}
