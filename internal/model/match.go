package model

import "encoding/json"

// MatchResult is the decoded response of a fingerprint service for one batch
type MatchResult struct {
	IsCacheBuilt          bool          `json:"isCacheBuilt"`
	ExactMatches          []ExactMatch  `json:"exactMatches"`
	ExactFingerprints     []Fingerprint `json:"exactFingerprints,omitempty"`
	UnmatchedFingerprints []Fingerprint `json:"unmatchedFingerprints,omitempty"`
}

// ExactMatch is a package the service recognized by fingerprint.
// Only ID is interpreted; File and LatestFiles pass through untouched.
type ExactMatch struct {
	ID          int64           `json:"id"`
	File        json.RawMessage `json:"file,omitempty"`
	LatestFiles json.RawMessage `json:"latestFiles,omitempty"`
}
