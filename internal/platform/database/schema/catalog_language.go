package schema

// CatalogLanguageTable represents the 'catalog.language' table
type CatalogLanguageTable struct {
	Table      string
	Code       string
	Name       string
	NativeName string
	IsActive   string
}

// CatalogLanguage is the schema definition for catalog.language
var CatalogLanguage = CatalogLanguageTable{
	Table:      "catalog.language",
	Code:       "code",
	Name:       "name",
	NativeName: "nativename",
	IsActive:   "isactive",
}

func (t CatalogLanguageTable) Columns() []string {
	return []string{t.Code, t.Name, t.NativeName, t.IsActive}
}
