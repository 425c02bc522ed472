// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package publisher manages the publishing houses referenced by catalogue records.
*/
package publisher

import "time"

// # Core Entity

// Publisher is a publishing house a catalogue record can reference.
type Publisher struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"` // URL-safe identifier
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	IsActive    bool   `json:"is_active"`

	// BookCount is a read-side aggregate; it is never written directly.
	BookCount int64 `json:"book_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// # Search & Filtering

// Filter holds the parameters for a filtered publisher list query.
type Filter struct {
	Query      string `json:"q,omitempty"` // Name search term
	OnlyActive bool   `json:"only_active,omitempty"`
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldWebsite     = "website"
)
