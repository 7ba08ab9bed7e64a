package domain

import "time"

// Attachment references an uploaded supporting document on a ticket.
// Only metadata is tracked here; file bytes live in external storage.
type Attachment struct {
	ID         string
	TicketID   string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	UploadedBy string
	CreatedAt  time.Time
}
