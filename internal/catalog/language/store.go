// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package language

import "context"

// # Language Data Access

// Repository defines the data access contract for the language reference list.
type Repository interface {

	/*
		List returns the full reference list ordered by name.

		Parameters:
		  - context: context.Context
		  - onlyActive: bool (Public surface scoping)

		Returns:
		  - []*Language: Reference entries with book counts
		  - error: Database retrieval failures
	*/
	List(context context.Context, onlyActive bool) ([]*Language, error)

	/*
		FindByCode returns the entry with the given ISO-639-1 code.

		Parameters:
		  - context: context.Context
		  - code: string

		Returns:
		  - *Language: The reference entry
		  - error: ErrNotFound if missing
	*/
	FindByCode(context context.Context, code string) (*Language, error)

	/*
		Create persists a new reference entry.

		Parameters:
		  - context: context.Context
		  - language: *Language

		Returns:
		  - error: CONFLICT when the code is already registered
	*/
	Create(context context.Context, language *Language) error

	/*
		Update persists changes to an existing entry's display names.

		Parameters:
		  - context: context.Context
		  - language: *Language (Target code and modified attributes)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	Update(context context.Context, language *Language) error

	/*
		CountBooks returns the number of live books published in the language.

		Parameters:
		  - context: context.Context
		  - code: string

		Returns:
		  - int64: Referencing book count
		  - error: Query failure
	*/
	CountBooks(context context.Context, code string) (int64, error)

	/*
		Delete removes a reference entry. The reference list carries no
		soft-delete column; the service guards against live references first.

		Parameters:
		  - context: context.Context
		  - code: string

		Returns:
		  - error: ErrNotFound if missing
	*/
	Delete(context context.Context, code string) error

	/*
		ToggleActive flips the visibility flag and returns the new state.

		Parameters:
		  - context: context.Context
		  - code: string

		Returns:
		  - bool: The state after the flip
		  - error: ErrNotFound if missing
	*/
	ToggleActive(context context.Context, code string) (bool, error)
}
