package store

import (
	"shamba-backend/internal/models"
	"shamba-backend/internal/notifier"

	"gorm.io/gorm"
)

// Store bundles the seven entity collections. It is constructed once at
// process start and passed by reference to every consumer; there is no
// ambient singleton.
type Store struct {
	Farmers       *Collection[models.Farmer]
	Aggregators   *Collection[models.Aggregator]
	Crops         *Collection[models.Crop]
	Orders        *Collection[models.Order]
	Contracts     *Collection[models.Contract]
	Allocations   *Collection[models.SupplyAllocation]
	Notifications *Collection[models.Notification]
}

// New opens all collections over a migrated database. events may be nil
// (tests); collections then mutate silently.
func New(db *gorm.DB, events notifier.Publisher) *Store {
	return &Store{
		Farmers:       NewCollection[models.Farmer](db, farmerSchema, events),
		Aggregators:   NewCollection[models.Aggregator](db, aggregatorSchema, events),
		Crops:         NewCollection[models.Crop](db, cropSchema, events),
		Orders:        NewCollection[models.Order](db, orderSchema, events),
		Contracts:     NewCollection[models.Contract](db, contractSchema, events),
		Allocations:   NewCollection[models.SupplyAllocation](db, allocationSchema, events),
		Notifications: NewCollection[models.Notification](db, notificationSchema, events),
	}
}
