package catalog

import "github.com/ppiankov/fpaudit/internal/model"

// Extract returns one fingerprint list per package, in catalog order.
// Within a package, fingerprints follow file order then module order.
// Duplicates are kept; deduplication happens when batching.
func Extract(packages []model.Package) [][]model.Fingerprint {
	perPackage := make([][]model.Fingerprint, len(packages))

	for i, pkg := range packages {
		fingerprints := []model.Fingerprint{}
		for _, file := range pkg.LatestFiles {
			for _, module := range file.Modules {
				fingerprints = append(fingerprints, module.Fingerprint)
			}
		}
		perPackage[i] = fingerprints
	}

	return perPackage
}
