// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package language manages the reference list of languages a catalogue record
can be published in.

Languages are keyed by their ISO-639-1 code rather than a surrogate ID, so
book rows reference them directly ("en", "vi", "ja").
*/
package language

// # Core Entity

// Language is a reference-list entry keyed by its ISO-639-1 code.
type Language struct {
	Code       string `json:"code"` // ISO-639-1, primary key
	Name       string `json:"name"`
	NativeName string `json:"native_name,omitempty"`
	IsActive   bool   `json:"is_active"`

	// BookCount is a read-side aggregate; it is never written directly.
	BookCount int64 `json:"book_count"`
}

// # Field Identifiers

const (
	FieldCode       = "code"
	FieldName       = "name"
	FieldNativeName = "native_name"
)
