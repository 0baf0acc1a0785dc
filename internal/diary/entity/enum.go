package entity

type Priority int16

const (
	PriorityUnknown Priority = 0
	PriorityLow     Priority = 1
	PriorityMedium  Priority = 2
	PriorityHigh    Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

func PriorityFromString(str string) Priority {
	switch str {
	case "LOW":
		return PriorityLow
	case "MEDIUM":
		return PriorityMedium
	case "HIGH":
		return PriorityHigh
	default:
		return PriorityUnknown
	}
}

// Cadence is how often a reminder fires once its start date has passed.
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

func CadenceFromString(str string) Cadence {
	switch str {
	case "EVERY_30_MIN":
		return CadenceEvery30Min
	case "DAILY":
		return CadenceDaily
	case "WEEKLY":
		return CadenceWeekly
	case "MONTHLY":
		return CadenceMonthly
	case "YEARLY":
		return CadenceYearly
	default:
		return CadenceUnknown
	}
}

// Cadences lists every cadence the scheduler runs, in trigger order.
func Cadences() []Cadence {
	return []Cadence{CadenceEvery30Min, CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceYearly}
}

type NoteFilter string

const (
	NoteFilterAll        NoteFilter = "all"
	NoteFilterUnfinished NoteFilter = "unfinished"
	NoteFilterOverdue    NoteFilter = "overdue"
	NoteFilterDone       NoteFilter = "done"
)

func NoteFilterFromString(str string) NoteFilter {
	switch NoteFilter(str) {
	case NoteFilterUnfinished, NoteFilterOverdue, NoteFilterDone:
		return NoteFilter(str)
	default:
		return NoteFilterAll
	}
}

type NoteSort string

const (
	NoteSortDueDate     NoteSort = "due_date"
	NoteSortPriority    NoteSort = "priority"
	NoteSortCreatedDate NoteSort = "created_date"
)

func NoteSortFromString(str string) NoteSort {
	switch NoteSort(str) {
	case NoteSortDueDate, NoteSortPriority:
		return NoteSort(str)
	default:
		return NoteSortCreatedDate
	}
}
