package schema

// CatalogPublisherTable represents the 'catalog.publisher' table
type CatalogPublisherTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	Website     string
	IsActive    string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CatalogPublisher is the schema definition for catalog.publisher
var CatalogPublisher = CatalogPublisherTable{
	Table:       "catalog.publisher",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	Website:     "website",
	IsActive:    "isactive",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

func (t CatalogPublisherTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Description, t.Website, t.IsActive,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
