package model

// Fingerprint is a 32-bit content hash identifying a module's files
type Fingerprint uint32

// Package represents one addon entry returned by the catalog search
type Package struct {
	ID          int64  `json:"id"`
	Name        string `json:"name,omitempty"`
	LatestFiles []File `json:"latestFiles"`
}

// File is one released file of a package
type File struct {
	ID       int64    `json:"id,omitempty"`
	FileName string   `json:"fileName,omitempty"`
	Modules  []Module `json:"modules"`
}

// Module is a top-level folder inside a file, identified by its fingerprint
type Module struct {
	FolderName  string      `json:"foldername,omitempty"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// CatalogSort selects the ordering of the catalog search
type CatalogSort int

const (
	SortDateCreated    CatalogSort = 1
	SortLastUpdated    CatalogSort = 2
	SortName           CatalogSort = 3
	SortPopularity     CatalogSort = 4
	SortTotalDownloads CatalogSort = 5
)

var sortNames = map[CatalogSort]string{
	SortDateCreated:    "date-created",
	SortLastUpdated:    "last-updated",
	SortName:           "name",
	SortPopularity:     "popularity",
	SortTotalDownloads: "total-downloads",
}

func (s CatalogSort) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseCatalogSort maps a sort name to its catalog value
func ParseCatalogSort(name string) (CatalogSort, bool) {
	for sort, n := range sortNames {
		if n == name {
			return sort, true
		}
	}
	return 0, false
}
