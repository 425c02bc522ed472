// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for the book domain.
type Repository interface {

	/*
		List returns a filtered, paginated slice of books and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Criteria for type, access level, categories, search)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Book: Slice of matching catalogue records
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	/*
		FindByID returns the book with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Book: The hydrated domain entity
		  - error: ErrNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Book, error)

	/*
		FindBySlug returns the book matching the unique SEO identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Book: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Book, error)

	/*
		SlugExists reports whether a slug is already taken by another record.

		Parameters:
		  - context: context.Context
		  - slug: string (Candidate)
		  - excludeID: string (Record to ignore, empty on create)

		Returns:
		  - bool: true if taken
		  - error: Query failure
	*/
	SlugExists(context context.Context, slug string, excludeID string) (bool, error)

	/*
		ISBNExists reports whether an ISBN is already registered to another record.

		Parameters:
		  - context: context.Context
		  - isbn: string
		  - excludeID: string (Record to ignore, empty on create)

		Returns:
		  - bool: true if taken
		  - error: Query failure
	*/
	ISBNExists(context context.Context, isbn string, excludeID string) (bool, error)

	/*
		Create persists a new book and its initial associations atomically.

		Category links and contributor credits are written in the same
		transaction as the core row.

		Parameters:
		  - context: context.Context
		  - book: *Book (Metadata, CategoryIDs, ContributorLinks)

		Returns:
		  - error: Storage or constraint failures
	*/
	Create(context context.Context, book *Book) error

	/*
		Update persists changes to an existing book's mutable fields and
		synchronizes its associations in one transaction.

		Category links are reconciled by set difference: rows that are in
		both the stored and desired sets are left untouched. Contributor
		credits are fully replaced.

		Parameters:
		  - context: context.Context
		  - book: *Book (Target ID and modified attributes)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	Update(context context.Context, book *Book) error

	/*
		SoftDelete marks a book as deleted without physical row removal.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: ErrNotFound if missing or already deleted
	*/
	SoftDelete(context context.Context, id string) error

	/*
		ToggleActive flips the visibility flag and returns the new state.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - bool: The state after the flip
		  - error: ErrNotFound if missing
	*/
	ToggleActive(context context.Context, id string) (bool, error)

	/*
		ToggleFeatured flips the homepage shelf flag and returns the new state.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - bool: The state after the flip
		  - error: ErrNotFound if missing
	*/
	ToggleFeatured(context context.Context, id string) (bool, error)

	/*
		ToggleDownloadable flips the PDF download permission and returns the
		new state.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - bool: The state after the flip
		  - error: ErrNotFound if missing
	*/
	ToggleDownloadable(context context.Context, id string) (bool, error)

	/*
		IncrementViewCount atomically increments the view counter on a book.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - delta: int64 (Amount to add)

		Returns:
		  - error: Atomic update failure
	*/
	IncrementViewCount(context context.Context, id string, delta int64) error

	/*
		IncrementDownloadCount atomically increments the download counter.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - delta: int64

		Returns:
		  - error: Atomic update failure
	*/
	IncrementDownloadCount(context context.Context, id string, delta int64) error
}
