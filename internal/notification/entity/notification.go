package entity

import (
	"time"

	"github.com/shandysiswandi/diarium/internal/pkg/valueobject"
)

// EmailDelivery is one attempted email, recorded before the provider is
// called and updated with the outcome.
type EmailDelivery struct {
	ID        int64
	Recipient string
	Template  Template
	Status    DeliveryStatus
	Detail    valueobject.JSONMap
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UpdateEmailDelivery struct {
	ID     int64
	Status DeliveryStatus
	Detail valueobject.JSONMap
}

// DueReminder is the joined row the scheduler fans out: the reminder, the note
// it belongs to, and the owner the mail goes to.
type DueReminder struct {
	ReminderID     int64
	Message        string
	NoteTitle      string
	OwnerEmail     string
	OwnerFirstName string
}
