package entities

import "time"

// KVEntry is one persisted key of the local client store.
type KVEntry struct {
	Key       string    `gorm:"column:key;size:191;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
