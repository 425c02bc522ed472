// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contributor

import "context"

// # Contributor Data Access

// Repository defines the data access contract for contributors.
type Repository interface {

	/*
		List returns a filtered, paginated slice of contributors and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Name search)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Contributor: Slice of matching people with credit counts
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Contributor, int, error)

	/*
		FindByID returns the contributor with the given primary key.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Contributor: The hydrated entity including its credit count
		  - error: ErrNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id int64) (*Contributor, error)

	/*
		FindBySlug returns the contributor matching the unique SEO identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Contributor: The hydrated entity including its credit count
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Contributor, error)

	/*
		SlugExists reports whether a slug is already taken by another person.

		Parameters:
		  - context: context.Context
		  - slug: string (Candidate)
		  - excludeID: int64 (Record to ignore, zero on create)

		Returns:
		  - bool: true if taken
		  - error: Query failure
	*/
	SlugExists(context context.Context, slug string, excludeID int64) (bool, error)

	/*
		Create persists a new contributor and backfills the generated ID.

		Parameters:
		  - context: context.Context
		  - contributor: *Contributor

		Returns:
		  - error: CONFLICT on unique violations, storage failures otherwise
	*/
	Create(context context.Context, contributor *Contributor) error

	/*
		Update persists changes to an existing contributor's mutable fields.

		Parameters:
		  - context: context.Context
		  - contributor: *Contributor (Target ID and modified attributes)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	Update(context context.Context, contributor *Contributor) error

	/*
		CountCredits returns the number of live books crediting the person.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - int64: Credit count
		  - error: Query failure
	*/
	CountCredits(context context.Context, id int64) (int64, error)

	/*
		SoftDelete marks a contributor as deleted without physical row removal.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: ErrNotFound if missing or already deleted
	*/
	SoftDelete(context context.Context, id int64) error
}
