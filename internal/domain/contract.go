package domain

import "time"

// ContractStatus enumerates lifecycle states for contracts. There is no draft
// state: a contract exists only after its ticket was materialized.
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusExpired    ContractStatus = "EXPIRED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

// StatusColor is the traffic-light health classification of a contract.
type StatusColor string

const (
	ColorGreen  StatusColor = "GREEN"
	ColorYellow StatusColor = "YELLOW"
	ColorRed    StatusColor = "RED"
)

// AutoRenewalDaysSentinel stands in for "no fixed horizon" on auto-renewing
// contracts without an end date.
const AutoRenewalDaysSentinel = 999

// Contract is the tracked legal instrument materialized from a done ticket.
type Contract struct {
	ID                string
	Number            string
	TicketID          string
	DivisionID        string
	DocumentType      DocumentType
	Description       string
	PICUserID         *string
	PICName           string
	PICEmail          string
	StartDate         time.Time
	EndDate           *time.Time
	IsAutoRenewal     bool
	Status            ContractStatus
	TerminatedAt      *time.Time
	TerminationReason *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// startOfDay truncates a moment to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysRemaining is the whole-day difference between now (start of day) and the
// contract end date. Auto-renewing contracts without an end date report the
// sentinel horizon.
func (c *Contract) DaysRemaining(now time.Time) int {
	if c.EndDate == nil {
		if c.IsAutoRenewal {
			return AutoRenewalDaysSentinel
		}
		return 0
	}
	diff := startOfDay(*c.EndDate).Sub(startOfDay(now))
	return int(diff / (24 * time.Hour))
}

// ComputeStatusColor classifies contract health against configurable day
// thresholds. Auto-renewing contracts are always green regardless of date math.
func ComputeStatusColor(c *Contract, warningDays, criticalDays int, now time.Time) StatusColor {
	if c.IsAutoRenewal {
		return ColorGreen
	}
	remaining := c.DaysRemaining(now)
	if remaining < 0 || c.Status == ContractStatusExpired {
		return ColorRed
	}
	if remaining <= criticalDays {
		return ColorRed
	}
	if remaining <= warningDays {
		return ColorYellow
	}
	return ColorGreen
}

// InitialContractStatus decides the status of a freshly materialized contract.
// Only non-auto-renewing contracts whose derived end date already passed start
// out expired.
func InitialContractStatus(endDate *time.Time, autoRenewal bool, now time.Time) ContractStatus {
	if autoRenewal || endDate == nil {
		return ContractStatusActive
	}
	if startOfDay(*endDate).Before(startOfDay(now)) {
		return ContractStatusExpired
	}
	return ContractStatusActive
}
