package models

import "time"

// Document is a unit of produced research content: an enrichment report or an
// extracted web page. Documents are persisted before the upload phase runs so
// that uploads read committed content, not in-memory state.
type Document struct {
	ID        string    `json:"id" badgerhold:"key"`
	JobID     string    `json:"job_id" badgerhold:"index"`
	Title     string    `json:"title"`
	FileName  string    `json:"file_name"`
	SourceURL string    `json:"source_url,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
