package models

import "time"

// Farmer is a registered smallholder. Planting/harvest dates are stored as
// YYYY-MM-DD strings; the analytics and dashboard layers parse them leniently.
type Farmer struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Region       string    `gorm:"column:region" json:"region"`
	Crop         string    `gorm:"column:crop" json:"crop"`
	Phone        string    `gorm:"column:phone" json:"phone"`
	Email        string    `gorm:"column:email" json:"email"`
	LandSize     float64   `gorm:"column:land_size" json:"landSize"`
	PlantingDate string    `gorm:"column:planting_date" json:"plantingDate"`
	HarvestDate  string    `gorm:"column:harvest_date" json:"harvestDate"`
	RiskLevel    string    `gorm:"column:risk_level;default:low" json:"riskLevel"`
	HealthScore  float64   `gorm:"column:health_score" json:"healthScore"`
	AgronomistID int64     `gorm:"column:agronomist_id" json:"agronomistId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Farmer) TableName() string {
	return "farmers"
}
