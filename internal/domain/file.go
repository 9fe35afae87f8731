package domain

import (
	"time"

	"github.com/google/uuid"
)

// File is an uploaded binary (product pictures, documents) stored in the
// relational store. Data is omitted from listings; only the download
// endpoint streams it.
type File struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_in_bytes"`
	Data         []byte    `json:"-"`
	CreatedBy    *string   `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
