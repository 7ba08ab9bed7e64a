package domain

// Settings keys stored in the key-value settings table.
const (
	SettingWarningDays      = "contract.warning_days"
	SettingCriticalDays     = "contract.critical_days"
	SettingExcludedDocTypes = "reminder.excluded_document_types"
	SettingNotifyLegal      = "reminder.notify_legal_role"
	SettingNotifyManagement = "reminder.notify_management_role"
	SettingLegalTeamEmail   = "reminder.legal_team_email"
)

// ReminderSettings is a snapshot of the configurable thresholds and toggles,
// resolved once per operation and passed in so the core stays pure.
type ReminderSettings struct {
	WarningDays          int
	CriticalDays         int
	ExcludedDocTypes     []DocumentType
	NotifyLegalRole      bool
	NotifyManagementRole bool
	LegalTeamEmail       string
}

// DefaultReminderSettings returns the built-in thresholds used when the
// settings store has no override.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		WarningDays:          60,
		CriticalDays:         30,
		NotifyLegalRole:      true,
		NotifyManagementRole: false,
	}
}

// Excluded reports whether the document type is excluded from reminders.
func (s ReminderSettings) Excluded(d DocumentType) bool {
	for _, excluded := range s.ExcludedDocTypes {
		if excluded == d {
			return true
		}
	}
	return false
}
