// Package models defines client-side data models used by the Inkveil CLI.
package models

import "time"

// JournalEntry is a fully decrypted entry, alive only in session memory.
type JournalEntry struct {
	Id        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overview is the decrypted list view of an entry: title but no content.
type Overview struct {
	Id        string
	Title     string
	CreatedAt time.Time
}

// RenderableEntry is the shape handed to the rendering collaborator when a
// switch payload is produced.
type RenderableEntry struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
