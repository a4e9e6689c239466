package helpers

import (
	"testing"
	"time"
)

func TestStaffTokenRoundTrip(t *testing.T) {
	token, err := GenerateStaffToken("s3cret", "Mia", "u-1", RoleKitchen, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, msg := ValidateToken("s3cret", token)
	if msg != "" {
		t.Fatalf("validate: %s", msg)
	}
	if claims.User_role != RoleKitchen || claims.Uid != "u-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, msg := ValidateToken("other", token); msg == "" {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestGenerateStaffTokenRejectsUnknownRole(t *testing.T) {
	if _, err := GenerateStaffToken("s3cret", "Mia", "u-1", "USER", time.Hour); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	at := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	if got := DayKey(at, loc); got != "2024-05-02" {
		t.Fatalf("expected 2024-05-02, got %s", got)
	}
	start := StartOfDay(at, loc)
	if start.Hour() != 0 || start.Day() != 2 {
		t.Fatalf("unexpected start of day %v", start)
	}
}

func TestShortOrderID(t *testing.T) {
	cases := map[string]string{
		"665f1c2ab9e4d1a2b3c4d5e6": "C4D5E6",
		"ab12":                     "AB12",
	}
	for in, want := range cases {
		if got := ShortOrderID(in); got != want {
			t.Errorf("ShortOrderID(%q) = %q, want %q", in, got, want)
		}
	}
}
