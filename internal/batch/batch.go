// Package batch groups package fingerprints into request-sized sets.
package batch

import (
	"slices"

	"github.com/ppiankov/fpaudit/internal/model"
)

// Batch is a deduplicated set of fingerprints sent in one request
type Batch map[model.Fingerprint]struct{}

// Len returns the number of distinct fingerprints in the batch
func (b Batch) Len() int {
	return len(b)
}

// Fingerprints returns the batch contents in ascending order
func (b Batch) Fingerprints() []model.Fingerprint {
	out := make([]model.Fingerprint, 0, len(b))
	for fp := range b {
		out = append(out, fp)
	}
	slices.Sort(out)
	return out
}

// Split chunks per-package fingerprint lists into groups of size packages and
// flattens each chunk into one deduplicated Batch. Deduplication is local to a
// chunk: a fingerprint shared by packages in different chunks appears in each.
// The last batch may hold fewer packages. A size below 1 is treated as 1.
func Split(perPackage [][]model.Fingerprint, size int) []Batch {
	if size < 1 {
		size = 1
	}

	batches := make([]Batch, 0, (len(perPackage)+size-1)/size)
	for chunk := range slices.Chunk(perPackage, size) {
		b := make(Batch)
		for _, fingerprints := range chunk {
			for _, fp := range fingerprints {
				b[fp] = struct{}{}
			}
		}
		batches = append(batches, b)
	}

	return batches
}
