package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shamba-backend/internal/database"
	"shamba-backend/internal/notifier"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recorder captures published events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (r *recorder) Publish(ev notifier.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []notifier.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifier.Event{}, r.events...)
}

func setupStore(t *testing.T, events notifier.Publisher) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return New(db, events)
}

func TestCreateThenGet_StampsAndPreservesFields(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	created, err := st.Farmers.Create(ctx, map[string]interface{}{
		"name":   "Wanjiku Kamau",
		"region": "Narok",
		"crop":   "maize",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt), "fresh record has matching stamps")
	assert.Equal(t, "low", created.RiskLevel) // default applied

	got, err := st.Farmers.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wanjiku Kamau", got.Name)
	assert.Equal(t, "Narok", got.Region)
	assert.Equal(t, "maize", got.Crop)
}

func TestCreate_MissingRequiredField(t *testing.T) {
	st := setupStore(t, nil)

	_, err := st.Farmers.Create(context.Background(), map[string]interface{}{"region": "Narok"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestUpdate_PartialMergePreservesAbsentFields(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	created, err := st.Farmers.Create(ctx, map[string]interface{}{"name": "Otieno", "region": "Kisumu"})
	require.NoError(t, err)

	updated, err := st.Farmers.Update(ctx, created.ID, map[string]interface{}{"region": "Nakuru"})
	require.NoError(t, err)
	assert.Equal(t, "Otieno", updated.Name)
	assert.Equal(t, "Nakuru", updated.Region)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "createdAt untouched by update")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updatedAt must strictly advance")
}

func TestUpdate_EmptyPartialOnlyAdvancesUpdatedAt(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	created, err := st.Orders.Create(ctx, map[string]interface{}{
		"supplierName":    "Rift Valley Aggregators",
		"quantityOrdered": 500.0,
	})
	require.NoError(t, err)

	updated, err := st.Orders.Update(ctx, created.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, created.SupplierName, updated.SupplierName)
	assert.Equal(t, created.QuantityOrdered, updated.QuantityOrdered)
	assert.Equal(t, created.Status, updated.Status)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdate_UnknownID(t *testing.T) {
	st := setupStore(t, nil)

	_, err := st.Farmers.Update(context.Background(), 42, map[string]interface{}{"region": "Narok"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_ReturnsPriorRecordAndShrinksCollection(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	a, err := st.Crops.Create(ctx, map[string]interface{}{"name": "Maize H614"})
	require.NoError(t, err)
	_, err = st.Crops.Create(ctx, map[string]interface{}{"name": "Beans Rosecoco"})
	require.NoError(t, err)

	removed, err := st.Crops.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maize H614", removed.Name)

	_, err = st.Crops.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rest, err := st.Crops.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestIDsNeverReusedAfterDelete(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	_, err := st.Aggregators.Create(ctx, map[string]interface{}{"name": "First"})
	require.NoError(t, err)
	b, err := st.Aggregators.Create(ctx, map[string]interface{}{"name": "Second"})
	require.NoError(t, err)
	require.Equal(t, int64(2), b.ID)

	_, err = st.Aggregators.Delete(ctx, b.ID)
	require.NoError(t, err)

	c, err := st.Aggregators.Create(ctx, map[string]interface{}{"name": "Third"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID, "deleted id must not be handed out again")
}

func TestList_InsertionOrder(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := st.Farmers.Create(ctx, map[string]interface{}{"name": name})
		require.NoError(t, err)
	}
	farmers, err := st.Farmers.List(ctx)
	require.NoError(t, err)
	require.Len(t, farmers, 3)
	assert.Equal(t, "A", farmers[0].Name)
	assert.Equal(t, "C", farmers[2].Name)
}

func TestPatchField_ContractFulfillment(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	created, err := st.Contracts.Create(ctx, map[string]interface{}{
		"supplierName":       "Narok Growers Co-op",
		"contractedQuantity": 100.0,
		"fulfillmentPercent": 0.0,
	})
	require.NoError(t, err)

	patched, err := st.Contracts.PatchField(ctx, created.ID, "fulfillmentPercent", 45.0)
	require.NoError(t, err)
	assert.Equal(t, 45.0, patched.FulfillmentPercent)
	assert.Equal(t, 100.0, patched.ContractedQuantity, "quantity untouched by fulfillment patch")
	assert.True(t, patched.UpdatedAt.After(created.UpdatedAt))
}

func TestPatchField_UnknownFieldRejected(t *testing.T) {
	st := setupStore(t, nil)
	ctx := context.Background()

	created, err := st.Notifications.Create(ctx, map[string]interface{}{"message": "hello"})
	require.NoError(t, err)

	_, err = st.Notifications.PatchField(ctx, created.ID, "nope", 1)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestMutationsPublishEventsAfterApply(t *testing.T) {
	rec := &recorder{}
	st := setupStore(t, rec)
	ctx := context.Background()

	created, err := st.Allocations.Create(ctx, map[string]interface{}{
		"farmerId": 7.0,
		"quantity": 50.0,
		"date":     "2025-06-01",
	})
	require.NoError(t, err)
	_, err = st.Allocations.Update(ctx, created.ID, map[string]interface{}{"status": "allocated"})
	require.NoError(t, err)
	_, err = st.Allocations.Delete(ctx, created.ID)
	require.NoError(t, err)

	events := rec.all()
	require.Len(t, events, 3)
	assert.Equal(t, "allocation_created", events[0].Channel)
	assert.Equal(t, "allocation_updated", events[1].Channel)
	assert.Equal(t, "allocation_deleted", events[2].Channel)
	assert.Equal(t, created.ID, events[0].ID)
	assert.Equal(t, "allocation", events[0].Entity)
}

func TestHubSubscriberSeesStoreCreate(t *testing.T) {
	hub := notifier.NewHub()
	st := setupStore(t, hub)
	ctx := context.Background()

	sub := hub.Subscribe("allocation_created")
	defer hub.Unsubscribe(sub)

	created, err := st.Allocations.Create(ctx, map[string]interface{}{
		"farmerId": 1.0,
		"quantity": 50.0,
		"date":     "2025-06-01",
	})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, "allocation_created", ev.Channel)
		assert.Equal(t, "allocation", ev.Entity)
		assert.Equal(t, created.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("expected the creation event, got none")
	}

	// exactly one event for one mutation
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected second event on channel %s", ev.Channel)
	default:
	}
}

func TestOrphanedAllocationAcceptedAtWriteTime(t *testing.T) {
	st := setupStore(t, nil)

	// farmerId 999 resolves to nothing; the store accepts it anyway — the
	// integrity check lives in the risk-alert pass.
	created, err := st.Allocations.Create(context.Background(), map[string]interface{}{
		"farmerId": 999.0,
		"quantity": 50.0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(999), created.FarmerID)
	assert.Equal(t, "scheduled", created.Status)
}

func TestUpstreamFailureSurfaced(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	st := New(db, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = st.Farmers.List(context.Background())
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}
