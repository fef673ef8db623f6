// pkg/models/sync_config.go
package models

// SyncConfigLastLocalSync holds the RFC3339 time of the last sync that
// moved local records into the remote store.
const SyncConfigLastLocalSync = "last_local_sync_at"

// SyncConfig stores synchronization metadata
type SyncConfig struct {
	Key   string `json:"key" gorm:"primaryKey;type:varchar(255)"`
	Value string `json:"value" gorm:"type:text"`
}

// TableName specifies the table name for SyncConfig
func (SyncConfig) TableName() string {
	return "sync_configs"
}
