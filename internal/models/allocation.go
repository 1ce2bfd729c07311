package models

import "time"

// SupplyAllocation schedules quantity from a farmer toward a buyer.
// FarmerID is a soft reference: it is never validated against the farmers
// collection at write time, so orphaned allocations are possible and are
// surfaced by the risk-alert pass instead of being rejected here.
type SupplyAllocation struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	FarmerID  int64     `gorm:"column:farmer_id" json:"farmerId"`
	Quantity  float64   `gorm:"column:quantity" json:"quantity"`
	Date      string    `gorm:"column:date" json:"date"`
	Status    string    `gorm:"column:status;default:scheduled" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SupplyAllocation) TableName() string {
	return "supply_allocations"
}
