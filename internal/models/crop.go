package models

import (
	"time"

	"gorm.io/datatypes"
)

// Crop is a crop variety reference record. Metadata holds free-form
// agronomic attributes (maturity days, altitude band, etc).
type Crop struct {
	ID        int64          `gorm:"column:id;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Variety   string         `gorm:"column:variety" json:"variety"`
	Season    string         `gorm:"column:season" json:"season"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Crop) TableName() string {
	return "crops"
}
