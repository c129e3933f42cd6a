package config

import "time"

// IngestConfig tunes the feed reconciliation engine.
type IngestConfig struct {
	// Concurrency is the worker budget of the batch executor.
	Concurrency int `mapstructure:"concurrency" default:"8"`
	// RetryAttempts is the maximum number of split reconciliation attempts on write conflicts.
	RetryAttempts int `mapstructure:"retry_attempts" default:"6"`
	// RetryBaseDelay is multiplied by the attempt number between retries.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" default:"100ms"`
	// RetryJitter bounds the random delay added to each backoff.
	RetryJitter time.Duration `mapstructure:"retry_jitter" default:"100ms"`
	// TxMaxWait bounds the wait for a transaction slot.
	TxMaxWait time.Duration `mapstructure:"tx_max_wait" default:"10s"`
	// TxTimeout bounds the total execution time of a split replacement transaction.
	TxTimeout time.Duration `mapstructure:"tx_timeout" default:"20s"`
	// Author is recorded on audit entries when the upload carries no identity.
	Author string `mapstructure:"author" default:"ingestion"`
	// RegistrationIDType is the national federation identifier type.
	RegistrationIDType string `mapstructure:"registration_id_type" default:"CZE"`
	// SystemIDType is the secondary-system identifier type.
	SystemIDType string `mapstructure:"system_id_type" default:"ORIS"`
	// ExternalIDType is the third known external-system identifier type.
	ExternalIDType string `mapstructure:"external_id_type" default:"QuickEvent"`
	// SnapshotsEnabled turns on publishing class standings to object storage.
	SnapshotsEnabled bool `mapstructure:"snapshots_enabled" default:"false"`
	// SnapshotPrefix is the object key prefix of class standings snapshots.
	SnapshotPrefix string `mapstructure:"snapshot_prefix" default:"results"`
}
