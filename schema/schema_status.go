package schema

import "time"

// CacheStatus represents the status of the roster cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RecordStatus represents the status of the record store.
type RecordStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	SchemaVersion  uint             `json:"schema_version"`
	Operators      int              `json:"operators"`
	TemplateItems  int              `json:"template_items"`
	HistoryRecords int              `json:"history_records"`
	LastSavedTime  time.Time        `json:"last_saved_time"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}
