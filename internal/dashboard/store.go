// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import "context"

// Repository defines the data access contract for the dashboard counters.
type Repository interface {

	/*
		CollectStats gathers all counters in one database round trip.

		Parameters:
		  - context: context.Context

		Returns:
		  - *Stats: The freshly collected counters
		  - error: Database execution errors
	*/
	CollectStats(context context.Context) (*Stats, error)
}
