package entity

// Template names an embedded email template.
type Template string

const (
	TemplateSignupOTP        Template = "signup_otp"
	TemplatePasswordResetOTP Template = "password_reset_otp"
	TemplateReminder         Template = "reminder"
	TemplateNoteExport       Template = "note_export"
)

func (t Template) String() string {
	return string(t)
}

// Cadence mirrors the reminder cadence values stored by the diary module.
type Cadence int16

const (
	CadenceUnknown    Cadence = 0
	CadenceEvery30Min Cadence = 1
	CadenceDaily      Cadence = 2
	CadenceWeekly     Cadence = 3
	CadenceMonthly    Cadence = 4
	CadenceYearly     Cadence = 5
)

func (c Cadence) String() string {
	switch c {
	case CadenceEvery30Min:
		return "EVERY_30_MIN"
	case CadenceDaily:
		return "DAILY"
	case CadenceWeekly:
		return "WEEKLY"
	case CadenceMonthly:
		return "MONTHLY"
	case CadenceYearly:
		return "YEARLY"
	default:
		return "UNKNOWN"
	}
}

// CronSpec returns the cron expression on which this cadence ticks.
func (c Cadence) CronSpec() string {
	switch c {
	case CadenceEvery30Min:
		return "*/30 * * * *"
	case CadenceDaily:
		return "0 0 * * *"
	case CadenceWeekly:
		return "0 0 * * 0"
	case CadenceMonthly:
		return "0 0 1 * *"
	case CadenceYearly:
		return "0 0 1 1 *"
	default:
		return ""
	}
}

// Cadences lists every cadence the scheduler runs.
func Cadences() []Cadence {
	return []Cadence{CadenceEvery30Min, CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceYearly}
}

type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusPending DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 2
	DeliveryStatusFailed  DeliveryStatus = 3
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusPending:
		return "pending"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
