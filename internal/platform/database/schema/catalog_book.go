package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table                   string
	ID                      string
	Title                   string
	Subtitle                string
	Slug                    string
	ISBN                    string
	Description             string
	PublisherID             string
	LanguageCode            string
	PublicationYear         string
	Pages                   string
	BookType                string
	AccessLevel             string
	CopyrightStatus         string
	LicenseType             string
	PublishedAt             string
	CoverImagePath          string
	PDFPath                 string
	IsActive                string
	IsFeatured              string
	Downloadable            string
	ViewCount               string
	DownloadCount           string
	TotalLoans              string
	TotalPhysicalCopies     string
	AvailablePhysicalCopies string
	CreatedAt               string
	UpdatedAt               string
	DeletedAt               string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:                   "catalog.book",
	ID:                      "id",
	Title:                   "title",
	Subtitle:                "subtitle",
	Slug:                    "slug",
	ISBN:                    "isbn",
	Description:             "description",
	PublisherID:             "publisherid",
	LanguageCode:            "languagecode",
	PublicationYear:         "publicationyear",
	Pages:                   "pages",
	BookType:                "booktype",
	AccessLevel:             "accesslevel",
	CopyrightStatus:         "copyrightstatus",
	LicenseType:             "licensetype",
	PublishedAt:             "publishedat",
	CoverImagePath:          "coverimagepath",
	PDFPath:                 "pdfpath",
	IsActive:                "isactive",
	IsFeatured:              "isfeatured",
	Downloadable:            "downloadable",
	ViewCount:               "viewcount",
	DownloadCount:           "downloadcount",
	TotalLoans:              "totalloans",
	TotalPhysicalCopies:     "totalphysicalcopies",
	AvailablePhysicalCopies: "availablephysicalcopies",
	CreatedAt:               "createdat",
	UpdatedAt:               "updatedat",
	DeletedAt:               "deletedat",
}

func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Subtitle, t.Slug, t.ISBN, t.Description,
		t.PublisherID, t.LanguageCode, t.PublicationYear, t.Pages,
		t.BookType, t.AccessLevel, t.CopyrightStatus, t.LicenseType,
		t.PublishedAt, t.CoverImagePath, t.PDFPath, t.IsActive,
		t.IsFeatured, t.Downloadable, t.ViewCount, t.DownloadCount,
		t.TotalLoans, t.TotalPhysicalCopies, t.AvailablePhysicalCopies,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
