package models

import "time"

// DerivativeEvent announces a derivative that was just produced.
type DerivativeEvent struct {
	ID          string    `json:"id"`
	Variant     string    `json:"variant"`
	Key         string    `json:"key"`
	Size        string    `json:"size"`
	Derivative  string    `json:"derivative"`
	URL         string    `json:"url,omitempty"`
	Blurhash    string    `json:"blurhash,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	FileSize    int64     `json:"file_size,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}
