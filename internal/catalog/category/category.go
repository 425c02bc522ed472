// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category manages the hierarchical classification tree of the catalogue.

Categories form a parent/child hierarchy used for browsing and filtering the
book collection. The package guards tree integrity: a category can never be
its own ancestor, and deletion is blocked while subcategories or associated
books still reference the node.
*/
package category

import "time"

// # Core Entity

// Category is a single node of the classification tree.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"` // URL-safe identifier
	Description string `json:"description,omitempty"`

	// SEO metadata rendered into the shelf page head.
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`

	// ParentID is nil for root categories.
	ParentID  *int64 `json:"parent_id,omitempty"`
	ImagePath string `json:"image_path,omitempty"`

	// SortOrder positions the node among its siblings. New nodes default
	// to the end of their sibling group.
	SortOrder int  `json:"sort_order"`
	IsActive  bool `json:"is_active"`

	// BookCount is a read-side aggregate; it is never written directly.
	BookCount int64 `json:"book_count"`

	// Children is populated only by tree queries.
	Children []*Category `json:"children,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// # Search & Filtering

// Filter holds the parameters for a filtered category list query.
type Filter struct {
	Query    string `json:"q,omitempty"` // Name/description search term
	ParentID *int64 `json:"parent_id,omitempty"`

	// OnlyRoot and OnlyChild scope by hierarchy level; at most one is set.
	OnlyRoot  bool `json:"only_root,omitempty"`
	OnlyChild bool `json:"only_child,omitempty"`

	// IsActive is tri-state: nil lists every visibility state, true the
	// public surface, false isolates hidden nodes.
	IsActive *bool `json:"is_active,omitempty"`
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID              = "id"
	FieldName            = "name"
	FieldSlug            = "slug"
	FieldDescription     = "description"
	FieldMetaTitle       = "meta_title"
	FieldMetaDescription = "meta_description"
	FieldParentID        = "parent_id"
	FieldImage           = "image"
	FieldSortOrder       = "sort_order"
)
