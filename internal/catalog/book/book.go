// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book defines the central domain entities for the Biblio catalogue.

It manages the lifecycle of library records (eBooks, printed volumes, mixed
holdings) including metadata, classification, and access policies.

Core Responsibility:

  - Catalogue: Defines book types (digital, physical) and access levels.
  - Classification: Manages category and contributor associations.
  - Distribution: Tracks cover images, PDF assets, and usage metrics.

This package acts as the source of truth for all catalogue record models.
*/
package book

import "time"

// # Domain Enums

// Type represents the physical form of a catalogued book.
type Type string

const (
	// TypeDigital indicates an electronic-only holding.
	TypeDigital Type = "digital"

	// TypePhysical indicates a printed volume with no digital asset.
	TypePhysical Type = "physical"

	// TypeBoth indicates the library holds the record in both forms.
	TypeBoth Type = "both"
)

// IsValid reports whether t is a recognised [Type] value.
func (t Type) IsValid() bool {
	switch t {
	case TypeDigital, TypePhysical, TypeBoth:
		return true
	}
	return false
}

// AccessLevel classifies who may open the digital asset of a book.
type AccessLevel string

const (
	// AccessFree is readable by any registered member.
	AccessFree AccessLevel = "free"

	// AccessPremium requires a paid subscription.
	AccessPremium AccessLevel = "premium"

	// AccessInstitutional is restricted to partnered institutions.
	AccessInstitutional AccessLevel = "institutional"
)

// IsValid reports whether a is a recognised [AccessLevel] value.
func (a AccessLevel) IsValid() bool {
	switch a {
	case AccessFree, AccessPremium, AccessInstitutional:
		return true
	}
	return false
}

// CopyrightStatus tracks the legal standing of a digitised work.
type CopyrightStatus string

const (
	CopyrightProtected    CopyrightStatus = "protected"
	CopyrightPublicDomain CopyrightStatus = "public_domain"
	CopyrightLicensed     CopyrightStatus = "licensed"
	CopyrightUnknown      CopyrightStatus = "unknown"
)

// IsValid reports whether c is a recognised [CopyrightStatus] value.
func (c CopyrightStatus) IsValid() bool {
	switch c {
	case CopyrightProtected, CopyrightPublicDomain, CopyrightLicensed, CopyrightUnknown:
		return true
	}
	return false
}

// ContributorType names the role a person played in producing a book.
type ContributorType string

const (
	ContributorAuthor      ContributorType = "author"
	ContributorEditor      ContributorType = "editor"
	ContributorTranslator  ContributorType = "translator"
	ContributorIllustrator ContributorType = "illustrator"
	ContributorOther       ContributorType = "other"
)

// IsValid reports whether ct is a recognised [ContributorType] value.
func (ct ContributorType) IsValid() bool {
	switch ct {
	case ContributorAuthor, ContributorEditor, ContributorTranslator, ContributorIllustrator, ContributorOther:
		return true
	}
	return false
}

// # Core Entities

// Book is the central aggregate of the Biblio domain.
// It represents a single catalogued work in the library.
type Book struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Subtitle        string          `json:"subtitle,omitempty"`
	Slug            string          `json:"slug"` // URL-safe identifier
	ISBN            string          `json:"isbn,omitempty"`
	Description     string          `json:"description,omitempty"`
	PublisherID     *int64          `json:"publisher_id,omitempty"`
	LanguageCode    string          `json:"language_code,omitempty"` // ISO-639-1 (e.g. "en", "vi")
	PublicationYear *int16          `json:"publication_year,omitempty"`
	Pages           *int            `json:"pages,omitempty"`
	BookType        Type            `json:"book_type"`
	AccessLevel     AccessLevel     `json:"access_level"`
	CopyrightStatus CopyrightStatus `json:"copyright_status"`
	LicenseType     string          `json:"license_type,omitempty"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"` // catalogue release date, not the print year
	CoverImagePath  string          `json:"cover_image_path,omitempty"`
	PDFPath         string          `json:"pdf_path,omitempty"`

	// Hydrated associations
	Categories   []CategoryRef     `json:"categories,omitempty"`
	Contributors []ContributorLink `json:"contributors,omitempty"`

	// # Junction Inputs
	// CategoryIDs drives the set-difference category sync; a nil slice
	// means "leave associations untouched" while an empty one clears them.
	CategoryIDs []int64 `json:"category_ids,omitempty"`

	// ContributorLinks fully replaces the contributor list on writes;
	// display order follows the slice order.
	ContributorLinks []ContributorInput `json:"contributor_links,omitempty"`

	// # Visibility & Metrics
	IsActive     bool `json:"is_active"`
	IsFeatured   bool `json:"is_featured"`
	Downloadable bool `json:"downloadable"`

	ViewCount     int64 `json:"view_count"`
	DownloadCount int64 `json:"download_count"`

	// TotalLoans is reserved for the circulation desk; nothing increments
	// it yet, but the column ships so loan history starts at zero.
	TotalLoans int64 `json:"total_loans"`

	// # Physical Holdings
	TotalPhysicalCopies     int `json:"total_physical_copies"`
	AvailablePhysicalCopies int `json:"available_physical_copies"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// CategoryRef is a denormalised category attached to a [Book].
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ContributorLink is a hydrated contributor credit on a [Book].
type ContributorLink struct {
	ContributorID int64           `json:"contributor_id"`
	Name          string          `json:"name"`
	Type          ContributorType `json:"type"`
	Sequence      int             `json:"sequence"`
}

// ContributorInput is the write-side shape of a contributor credit.
// Sequence is derived from slice position, not supplied by clients.
type ContributorInput struct {
	ContributorID int64           `json:"contributor_id"`
	Type          ContributorType `json:"type"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered book list query.
type Filter struct {
	Query        string        `json:"q,omitempty"` // Title/ISBN search term
	BookType     []Type        `json:"book_type,omitempty"`
	AccessLevel  []AccessLevel `json:"access_level,omitempty"`
	CategoryIDs  []int64       `json:"category_ids,omitempty"`
	PublisherID  *int64        `json:"publisher_id,omitempty"`
	LanguageCode string        `json:"language_code,omitempty"`
	Year         *int16        `json:"year,omitempty"`

	// IsActive is tri-state: nil lists every visibility state (staff
	// table), true is the public surface, false isolates hidden records.
	IsActive     *bool `json:"is_active,omitempty"`
	OnlyFeatured bool  `json:"only_featured,omitempty"` // Homepage shelf
	Sort         string        `json:"sort,omitempty"`          // latest, popular, downloads, az, za
	SortDir      string        `json:"sort_dir,omitempty"`      // "asc" or "desc"
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID              = "id"
	FieldTitle           = "title"
	FieldSubtitle        = "subtitle"
	FieldSlug            = "slug"
	FieldISBN            = "isbn"
	FieldDescription     = "description"
	FieldPublisherID     = "publisher_id"
	FieldLanguageCode    = "language_code"
	FieldPublicationYear = "publication_year"
	FieldPages           = "pages"
	FieldBookType        = "book_type"
	FieldAccessLevel     = "access_level"
	FieldCopyrightStatus = "copyright_status"
	FieldLicenseType     = "license_type"
	FieldPublishedAt     = "published_at"
	FieldCategoryIDs     = "category_ids"
	FieldContributors    = "contributor_links"
	FieldCoverImage      = "cover_image"
	FieldPDFFile         = "pdf_file"
	FieldTotalCopies     = "total_physical_copies"
	FieldAvailableCopies = "available_physical_copies"
)
