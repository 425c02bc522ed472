// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// # Category Data Access

// Repository defines the data access contract for the classification tree.
type Repository interface {

	/*
		List returns a filtered, paginated slice of categories and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search term, parent scoping, visibility)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Category: Flat slice of matching nodes with book counts
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error)

	/*
		ListAll returns every live category ordered for tree assembly.

		Parameters:
		  - context: context.Context
		  - onlyActive: bool (Public surface scoping)

		Returns:
		  - []*Category: Flat slice ordered by sort order
		  - error: Database retrieval failures
	*/
	ListAll(context context.Context, onlyActive bool) ([]*Category, error)

	/*
		FindByID returns the category with the given primary key.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Category: The hydrated node including its book count
		  - error: ErrNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id int64) (*Category, error)

	/*
		FindBySlug returns the category matching the unique SEO identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Category: The hydrated node including its book count
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Category, error)

	/*
		SlugExists reports whether a slug is already taken by another node.

		Parameters:
		  - context: context.Context
		  - slug: string (Candidate)
		  - excludeID: int64 (Node to ignore, zero on create)

		Returns:
		  - bool: true if taken
		  - error: Query failure
	*/
	SlugExists(context context.Context, slug string, excludeID int64) (bool, error)

	/*
		IsDescendant reports whether candidate sits anywhere in the subtree
		rooted at ancestor. Used to reject re-parenting cycles.

		Parameters:
		  - context: context.Context
		  - ancestorID: int64 (Subtree root)
		  - candidateID: int64 (Proposed new parent)

		Returns:
		  - bool: true if candidate is inside the subtree
		  - error: Query failure
	*/
	IsDescendant(context context.Context, ancestorID, candidateID int64) (bool, error)

	/*
		NextSortOrder returns the position after the last sibling in the
		given parent group.

		Parameters:
		  - context: context.Context
		  - parentID: *int64 (nil for the root group)

		Returns:
		  - int: max sibling sort order + 1, or 1 for an empty group
		  - error: Query failure
	*/
	NextSortOrder(context context.Context, parentID *int64) (int, error)

	/*
		Create persists a new category node and backfills its generated ID.

		Parameters:
		  - context: context.Context
		  - category: *Category

		Returns:
		  - error: CONFLICT on unique violations, storage failures otherwise
	*/
	Create(context context.Context, category *Category) error

	/*
		Update persists changes to an existing node's mutable fields.

		Parameters:
		  - context: context.Context
		  - category: *Category (Target ID and modified attributes)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	Update(context context.Context, category *Category) error

	/*
		CountChildren returns the number of live direct subcategories.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - int64: Direct child count
		  - error: Query failure
	*/
	CountChildren(context context.Context, id int64) (int64, error)

	/*
		CountBooks returns the number of live books linked to the node.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - int64: Associated book count
		  - error: Query failure
	*/
	CountBooks(context context.Context, id int64) (int64, error)

	/*
		SoftDelete marks a category as deleted without physical row removal.

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
