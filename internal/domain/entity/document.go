package entity

import "time"

// Document represents one uploaded supporting file. The binary content
// lives in file storage; this record carries metadata and review state.
type Document struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	FileURL       string     `json:"file_url"`
	FileSize      int64      `json:"file_size"`
	MimeType      string     `json:"mime_type"`
	UserID        string     `json:"user_id"`
	ApplicantID   string     `json:"applicant_id,omitempty"`
	ApplicationID string     `json:"application_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Deleted       bool       `json:"deleted"`

	History []DocumentHistory `json:"history"`
}

// DocumentHistory is one append-only event on a document. Events are never
// rewritten, only appended.
type DocumentHistory struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Details    string    `json:"details"`
}
