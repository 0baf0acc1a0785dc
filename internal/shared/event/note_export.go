package event

const NoteExportDestination string = "note_export"
const NoteExportConsumerNotification string = "note_export_notification"

type NoteExportMessage struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	DownloadURL string `json:"download_url"`
	NoteCount   int    `json:"note_count"`
}
