package models

import "time"

// Order is a procurement ledger entry. Source is "farmer", "aggregator" or
// "farmmall"; status moves through pending/ordered/received/completed/rejected.
type Order struct {
	ID               int64     `gorm:"column:id;primaryKey" json:"id"`
	SupplierName     string    `gorm:"column:supplier_name;not null" json:"supplierName"`
	Source           string    `gorm:"column:source;default:farmer" json:"source"`
	Crop             string    `gorm:"column:crop" json:"crop"`
	QuantityOrdered  float64   `gorm:"column:quantity_ordered" json:"quantityOrdered"`
	QuantityAccepted float64   `gorm:"column:quantity_accepted" json:"quantityAccepted"`
	QuantityRejected float64   `gorm:"column:quantity_rejected" json:"quantityRejected"`
	RejectionReason  string    `gorm:"column:rejection_reason" json:"rejectionReason"`
	UnitPrice        float64   `gorm:"column:unit_price" json:"unitPrice"`
	Status           string    `gorm:"column:status;default:pending" json:"status"`
	PaymentStatus    string    `gorm:"column:payment_status;default:unpaid" json:"paymentStatus"`
	ExpectedDelivery string    `gorm:"column:expected_delivery" json:"expectedDelivery"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}
