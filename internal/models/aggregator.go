package models

import "time"

// Aggregator is a bulk supplier. Type is "internal" or "external";
// reliability and quality scores are 0-100.
type Aggregator struct {
	ID               int64     `gorm:"column:id;primaryKey" json:"id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	Region           string    `gorm:"column:region" json:"region"`
	Type             string    `gorm:"column:type;default:external" json:"type"`
	HistoricalVolume float64   `gorm:"column:historical_volume" json:"historicalVolume"`
	ReliabilityScore float64   `gorm:"column:reliability_score" json:"reliabilityScore"`
	QualityScore     float64   `gorm:"column:quality_score" json:"qualityScore"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Aggregator) TableName() string {
	return "aggregators"
}
