// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package contributor manages the people credited on catalogue records:
authors, editors, translators, and illustrators.

A contributor is a standalone person entity; the role they played on a given
book lives on the credit junction, so one person can be an author on one
record and a translator on another.
*/
package contributor

import "time"

// # Core Entity

// Contributor is a person credited on one or more catalogue records.
type Contributor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"` // URL-safe identifier
	Bio  string `json:"bio,omitempty"`

	// BookCount is a read-side aggregate; it is never written directly.
	BookCount int64 `json:"book_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// # Search & Filtering

// Filter holds the parameters for a filtered contributor list query.
type Filter struct {
	Query string `json:"q,omitempty"` // Name search term
}

// # Field Identifiers

const (
	FieldID   = "id"
	FieldName = "name"
	FieldSlug = "slug"
	FieldBio  = "bio"
)
