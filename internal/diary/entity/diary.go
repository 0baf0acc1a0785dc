package entity

import (
	"time"
)

type Category struct {
	ID   int64
	Name string
}

type Note struct {
	ID           int64
	OwnerID      int64
	Title        string
	Content      string
	CategoryID   int64
	CategoryName string
	Priority     Priority
	DueDate      time.Time
	IsFinished   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDue reports whether the note slipped past its due date without being
// finished. today is a date, the time component is ignored.
func (n Note) IsDue(today time.Time) bool {
	return !n.IsFinished && n.DueDate.Before(today)
}

type Reminder struct {
	ID        int64
	NoteID    int64
	StartDate time.Time
	Cadence   Cadence
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueReminder is the joined row the scheduler fans out: the reminder, its note
// title, and the owner the mail goes to.
type DueReminder struct {
	ReminderID     int64
	Message        string
	NoteTitle      string
	OwnerEmail     string
	OwnerFirstName string
}

// OwnerInfo is the slice of the account record the diary module needs when it
// addresses the owner directly, such as the export mail.
type OwnerInfo struct {
	ID        int64
	Email     string
	FirstName string
}

type NewNote struct {
	ID         int64
	OwnerID    int64
	Title      string
	Content    string
	CategoryID int64
	Priority   Priority
	DueDate    time.Time
}

type PatchNote struct {
	ID         int64
	OwnerID    int64
	Title      string
	Content    string
	CategoryID int64
	Priority   Priority
	DueDate    time.Time
	IsFinished bool
}

type NoteListFilter struct {
	OwnerID  int64
	FilterBy NoteFilter
	SortBy   NoteSort
	Today    time.Time
	Page     int32
	Size     int32
}
