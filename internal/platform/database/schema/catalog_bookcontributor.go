package schema

// BookContributorTable represents the 'catalog.bookcontributor' junction table
type BookContributorTable struct {
	Table           string
	BookID          string
	ContributorID   string
	ContributorType string
	Sequence        string
}

// BookContributor is the schema definition for catalog.bookcontributor
var BookContributor = BookContributorTable{
	Table:           "catalog.bookcontributor",
	BookID:          "bookid",
	ContributorID:   "contributorid",
	ContributorType: "contributortype",
	Sequence:        "sequence",
}
