package models

import "time"

type UploadStatus string

const (
	UploadStatusStored   UploadStatus = "stored"
	UploadStatusAccepted UploadStatus = "accepted"
	UploadStatusRejected UploadStatus = "rejected"
)

// Upload is the ledger row written after a blob has been stored.
type Upload struct {
	ID         string
	StoredName string
	Container  string
	MimeType   string
	Category   string
	Tags       string
	SizeBytes  int64
	Status     UploadStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
