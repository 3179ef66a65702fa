package models

import "time"

type FileKind string

const (
	FileResume      FileKind = "resume"
	FileCoverLetter FileKind = "cover_letter"
)

func (k FileKind) Valid() bool { return k == FileResume || k == FileCoverLetter }

type UploadTicket struct {
	StorageID string    `json:"storage_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
