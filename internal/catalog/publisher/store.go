// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publisher

import "context"

// # Publisher Data Access

// Repository defines the data access contract for publishers.
type Repository interface {

	/*
		List returns a filtered, paginated slice of publishers and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Name search, visibility)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Publisher: Slice of matching houses with book counts
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Publisher, int, error)

	/*
		FindByID returns the publisher with the given primary key.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Publisher: The hydrated entity including its book count
		  - error: ErrNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id int64) (*Publisher, error)

	/*
		FindBySlug returns the publisher matching the unique SEO identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Publisher: The hydrated entity including its book count
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Publisher, error)

	/*
		SlugExists reports whether a slug is already taken by another house.

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
		Create persists a new publisher and backfills the generated ID.

		Parameters:
		  - context: context.Context
		  - publisher: *Publisher

		Returns:
		  - error: CONFLICT on unique violations, storage failures otherwise
	*/
	Create(context context.Context, publisher *Publisher) error

	/*
		Update persists changes to an existing publisher's mutable fields.

		Parameters:
		  - context: context.Context
		  - publisher: *Publisher (Target ID and modified attributes)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	Update(context context.Context, publisher *Publisher) error

	/*
		CountBooks returns the number of live books referencing the house.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - int64: Referencing book count
		  - error: Query failure
	*/
	CountBooks(context context.Context, id int64) (int64, error)

	/*
		SoftDelete marks a publisher as deleted without physical row removal.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: ErrNotFound if missing or already deleted
	*/
	SoftDelete(context context.Context, id int64) error

	/*
		ToggleActive flips the visibility flag and returns the new state.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - bool: The state after the flip
		  - error: ErrNotFound if missing
	*/
	ToggleActive(context context.Context, id int64) (bool, error)
}
