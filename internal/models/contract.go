package models

import "time"

// Contract is a supply contract with a named supplier. FulfillmentPercent is
// tracked independently of the quantity fields and patched on its own.
type Contract struct {
	ID                 int64     `gorm:"column:id;primaryKey" json:"id"`
	SupplierName       string    `gorm:"column:supplier_name;not null" json:"supplierName"`
	SupplierType       string    `gorm:"column:supplier_type;default:farmer" json:"supplierType"`
	ContractedQuantity float64   `gorm:"column:contracted_quantity" json:"contractedQuantity"`
	FulfillmentPercent float64   `gorm:"column:fulfillment_percent" json:"fulfillmentPercent"`
	StartDate          string    `gorm:"column:start_date" json:"startDate"`
	EndDate            string    `gorm:"column:end_date" json:"endDate"`
	Status             string    `gorm:"column:status;default:draft" json:"status"`
	PricePerUnit       float64   `gorm:"column:price_per_unit" json:"pricePerUnit"`
	PaymentTerms       string    `gorm:"column:payment_terms" json:"paymentTerms"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Contract) TableName() string {
	return "contracts"
}
