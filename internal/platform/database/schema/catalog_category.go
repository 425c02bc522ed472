package schema

// CatalogCategoryTable represents the 'catalog.category' table
type CatalogCategoryTable struct {
	Table           string
	ID              string
	Name            string
	Slug            string
	Description     string
	MetaTitle       string
	MetaDescription string
	ParentID        string
	ImagePath       string
	SortOrder       string
	IsActive        string
	CreatedAt       string
	UpdatedAt       string
	DeletedAt       string
}

// CatalogCategory is the schema definition for catalog.category
var CatalogCategory = CatalogCategoryTable{
	Table:           "catalog.category",
	ID:              "id",
	Name:            "name",
	Slug:            "slug",
	Description:     "description",
	MetaTitle:       "metatitle",
	MetaDescription: "metadescription",
	ParentID:        "parentid",
	ImagePath:       "imagepath",
	SortOrder:       "sortorder",
	IsActive:        "isactive",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	DeletedAt:       "deletedat",
}

func (t CatalogCategoryTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Description, t.MetaTitle, t.MetaDescription,
		t.ParentID, t.ImagePath, t.SortOrder, t.IsActive,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
