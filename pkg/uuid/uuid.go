// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid wraps google/uuid to provide time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a millisecond timestamp in the high bits, which keeps
// B-tree indexes append-mostly and avoids the page fragmentation random
// v4 keys cause on the books and account tables.
package uuid

import "github.com/google/uuid"

// New returns a UUIDv7 string, falling back to v4 if the system clock
// source is unavailable.
func New() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return v7.String()
}

// IsValid reports whether s parses as any UUID version.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
