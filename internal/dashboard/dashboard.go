// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dashboard aggregates catalogue and membership counters for the staff
admin panel.

The counters are collected in a single database round trip and cached in
Redis for a short window, so a busy admin panel never hammers the primary
database with COUNT queries.
*/
package dashboard

import "time"

// Stats holds the admin panel counters.
type Stats struct {
	TotalBooks    int64 `json:"total_books"`
	ActiveBooks   int64 `json:"active_books"`
	FeaturedBooks int64 `json:"featured_books"`

	TotalCategories   int64 `json:"total_categories"`
	TotalContributors int64 `json:"total_contributors"`
	TotalPublishers   int64 `json:"total_publishers"`
	TotalLanguages    int64 `json:"total_languages"`

	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	VerifiedUsers int64 `json:"verified_users"`

	// NewUsersThisMonth counts registrations in the last 30 days.
	NewUsersThisMonth int64 `json:"new_users_this_month"`

	// GeneratedAt marks when the counters were collected, so staff can
	// tell cached numbers from live ones.
	GeneratedAt time.Time `json:"generated_at"`
}
