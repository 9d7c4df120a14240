package model

import "time"

// AuditReport is the complete result of one audit run
type AuditReport struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	CatalogURL string          `json:"catalog_url"`
	BatchSize  int             `json:"batch_size"`
	Batches    int             `json:"batches"`
	Packages   int             `json:"packages"`
	Unique     int             `json:"unique_across_services"`
	Services   []ServiceReport `json:"services"`
}

// ServiceReport holds the counts for one fingerprint service
type ServiceReport struct {
	Service       string `json:"service"`
	Endpoint      string `json:"endpoint"`
	Distinct      int    `json:"distinct_packages"`
	Matches       int    `json:"exact_matches"`
	Batches       int    `json:"batches"`
	FailedBatches int    `json:"failed_batches"`
}

