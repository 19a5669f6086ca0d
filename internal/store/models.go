package store

import (
	"time"

	"gorm.io/datatypes"
)

// Edit record types.
const (
	RecordAdd    = "add"
	RecordUpdate = "update"
	RecordMove   = "move"
	RecordDelete = "delete"
)

// Layer is a persisted feature layer.
type Layer struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	Name      string `gorm:"type:varchar(255);not null"`
	Color     string `gorm:"type:varchar(16)"`
	CreatedAt time.Time
}

// FeatureRecord is one committed feature. Geometry holds a GeoJSON geometry
// object and Properties the remaining feature properties.
type FeatureRecord struct {
	ID         string `gorm:"primaryKey;type:varchar(64)"`
	LayerID    string `gorm:"type:varchar(64);index"`
	Kind       string `gorm:"type:varchar(32)"`
	Geometry   datatypes.JSON
	Properties datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (FeatureRecord) TableName() string { return "features" }

// EditRecord is the audit trail of a feature. OldGeojson and NewGeojson are
// full GeoJSON features; either may be empty depending on Type.
type EditRecord struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	FeatureID  string `gorm:"type:varchar(64);index"`
	LayerID    string `gorm:"type:varchar(64)"`
	Type       string `gorm:"type:varchar(16)"`
	Date       time.Time
	OldGeojson datatypes.JSON
	NewGeojson datatypes.JSON
}
