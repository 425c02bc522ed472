package schema

// CatalogContributorTable represents the 'catalog.contributor' table
type CatalogContributorTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	Bio       string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// CatalogContributor is the schema definition for catalog.contributor
var CatalogContributor = CatalogContributorTable{
	Table:     "catalog.contributor",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	Bio:       "bio",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}

func (t CatalogContributorTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.Bio, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
