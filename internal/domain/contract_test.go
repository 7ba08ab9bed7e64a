package domain

import (
	"testing"
	"time"
)

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name     string
		contract Contract
		want     int
	}{
		{"ten days out", Contract{EndDate: timePtr(now.AddDate(0, 0, 10))}, 10},
		{"ends today", Contract{EndDate: timePtr(now.Add(2 * time.Hour))}, 0},
		{"already past", Contract{EndDate: timePtr(now.AddDate(0, 0, -3))}, -3},
		{"auto renewal without end", Contract{IsAutoRenewal: true}, AutoRenewalDaysSentinel},
		{"no end date", Contract{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.contract.DaysRemaining(now); got != tc.want {
				t.Fatalf("DaysRemaining() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestComputeStatusColor(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	const warning, critical = 60, 30

	cases := []struct {
		name     string
		contract Contract
		want     StatusColor
	}{
		{"far out is green", Contract{Status: ContractStatusActive, EndDate: timePtr(now.AddDate(0, 0, 120))}, ColorGreen},
		{"inside warning is yellow", Contract{Status: ContractStatusActive, EndDate: timePtr(now.AddDate(0, 0, 45))}, ColorYellow},
		{"warning boundary is yellow", Contract{Status: ContractStatusActive, EndDate: timePtr(now.AddDate(0, 0, 60))}, ColorYellow},
		{"inside critical is red", Contract{Status: ContractStatusActive, EndDate: timePtr(now.AddDate(0, 0, 10))}, ColorRed},
		{"critical boundary is red", Contract{Status: ContractStatusActive, EndDate: timePtr(now.AddDate(0, 0, 30))}, ColorRed},
		{"past end is red", Contract{Status: ContractStatusActive, EndDate: timePtr(now.AddDate(0, 0, -1))}, ColorRed},
		{"expired status is red", Contract{Status: ContractStatusExpired, EndDate: timePtr(now.AddDate(0, 0, 120))}, ColorRed},
		{"auto renewal always green", Contract{Status: ContractStatusActive, IsAutoRenewal: true, EndDate: timePtr(now.AddDate(0, 0, 5))}, ColorGreen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeStatusColor(&tc.contract, warning, critical, now); got != tc.want {
				t.Fatalf("ComputeStatusColor() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestInitialContractStatus(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	if got := InitialContractStatus(timePtr(now.AddDate(0, 0, -1)), false, now); got != ContractStatusExpired {
		t.Errorf("past end date should start expired, got %s", got)
	}
	if got := InitialContractStatus(timePtr(now), false, now); got != ContractStatusActive {
		t.Errorf("same-day end should start active, got %s", got)
	}
	if got := InitialContractStatus(timePtr(now.AddDate(0, 0, -1)), true, now); got != ContractStatusActive {
		t.Errorf("auto-renewing should always start active, got %s", got)
	}
	if got := InitialContractStatus(nil, false, now); got != ContractStatusActive {
		t.Errorf("missing end date should start active, got %s", got)
	}
}

func TestReminderSettingsExcluded(t *testing.T) {
	cfg := DefaultReminderSettings()
	if cfg.WarningDays != 60 || cfg.CriticalDays != 30 {
		t.Fatalf("defaults = (%d, %d), want (60, 30)", cfg.WarningDays, cfg.CriticalDays)
	}
	if cfg.Excluded(DocTypeNDA) {
		t.Error("nothing should be excluded by default")
	}
	cfg.ExcludedDocTypes = []DocumentType{DocTypeNDA}
	if !cfg.Excluded(DocTypeNDA) || cfg.Excluded(DocTypeAgreement) {
		t.Error("exclusion list not honored")
	}
}
