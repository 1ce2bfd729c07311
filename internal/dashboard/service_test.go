package dashboard

import (
	"context"
	"testing"
	"time"

	"shamba-backend/internal/analytics"
	"shamba-backend/internal/database"
	"shamba-backend/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedToday = time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	st := store.New(db, nil)
	clock := func() time.Time { return fixedToday }
	svc := &Service{
		Store:     st,
		Analytics: analytics.NewService(st, analytics.DefaultCostModel(25), clock),
		now:       clock,
	}
	return svc, st
}

func day(offset int) string {
	return fixedToday.AddDate(0, 0, offset).Format(dateLayout)
}

func ptr(v int64) *int64 { return &v }

func TestProgress_ClampAndInvalidDates(t *testing.T) {
	svc, _ := setupService(t)

	// 30 days into a 100-day season
	assert.Equal(t, 30.0, svc.progress(day(-30), day(70)))

	// planting yesterday clamps up to the floor
	assert.Equal(t, 5.0, svc.progress(day(-1), day(99)))

	// harvest long past clamps to the ceiling
	assert.Equal(t, 95.0, svc.progress(day(-200), day(-100)))

	assert.Equal(t, 0.0, svc.progress("", day(70)))
	assert.Equal(t, 0.0, svc.progress("not-a-date", day(70)))
	assert.Equal(t, 0.0, svc.progress(day(10), day(10)), "zero-length season")
	assert.Equal(t, 0.0, svc.progress(day(10), day(-10)), "harvest before planting")
}

func TestCropStageThresholds(t *testing.T) {
	assert.Equal(t, "Germination", CropStage(5))
	assert.Equal(t, "Germination", CropStage(24.9))
	assert.Equal(t, "Vegetative", CropStage(25))
	assert.Equal(t, "Flowering", CropStage(50))
	assert.Equal(t, "Harvest Ready", CropStage(75))
	assert.Equal(t, "Harvest Ready", CropStage(95))
}

func TestComposeUnknownRoleFallsBackToFarmerView(t *testing.T) {
	svc, _ := setupService(t)

	out, err := svc.Compose(context.Background(), Principal{UserID: 1, Name: "Guest", Role: "intern"})
	require.NoError(t, err)
	view, ok := out.(*FarmerView)
	require.True(t, ok)
	assert.True(t, view.Placeholder)
}

func TestFarmerView_PlaceholderWhenUnresolved(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, p := range []Principal{
		{UserID: 1, Name: "No Link", Role: RoleFarmer},
		{UserID: 2, Name: "Dangling", Role: RoleFarmer, FarmerID: ptr(99)},
	} {
		view, err := svc.Farmer(ctx, p)
		require.NoError(t, err)
		assert.True(t, view.Placeholder)
		assert.Equal(t, p.Name, view.Farmer.Name)
		assert.Equal(t, "Unspecified", view.Farmer.Region)
		assert.Equal(t, "low", view.Farmer.RiskLevel)
		assert.Empty(t, view.Advisories)
	}
}

func TestFarmerView_ProgressAdvisoriesAndPeers(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	me, err := st.Farmers.Create(ctx, map[string]interface{}{
		"name": "Wanjiku", "region": "Narok", "riskLevel": "high",
		"plantingDate": day(-60), "harvestDate": day(40), "landSize": 3.0,
	})
	require.NoError(t, err)
	// peer in the same region, 30/100 through the season
	_, err = st.Farmers.Create(ctx, map[string]interface{}{
		"name": "Otieno", "region": "Narok",
		"plantingDate": day(-30), "harvestDate": day(70), "landSize": 5.0,
	})
	require.NoError(t, err)
	// different region, excluded from peers
	_, err = st.Farmers.Create(ctx, map[string]interface{}{"name": "Akinyi", "region": "Kisumu", "landSize": 9.0})
	require.NoError(t, err)

	view, err := svc.Farmer(ctx, Principal{UserID: 5, Name: "Wanjiku", Role: RoleFarmer, FarmerID: ptr(me.ID)})
	require.NoError(t, err)
	assert.False(t, view.Placeholder)
	assert.Equal(t, 60.0, view.Progress)
	assert.Equal(t, "Flowering", view.CropStage)
	require.Len(t, view.Advisories, 2, "stage advisory plus high-risk flag")

	assert.Equal(t, 1, view.Peers.Count)
	assert.Equal(t, 30.0, view.Peers.AvgProgress)
	assert.Equal(t, 5.0, view.Peers.AvgLandSize)
}

func TestAdminView_RegionBucketsAndRiskTags(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	mk := func(region, risk string, land float64) {
		_, err := st.Farmers.Create(ctx, map[string]interface{}{"name": "F", "region": region, "riskLevel": risk, "landSize": land})
		require.NoError(t, err)
	}
	mk("Narok", "high", 2)
	mk("Narok", "low", 3)
	mk("Kisumu", "low", 4)
	mk("", "low", 1)

	view, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, view.Role)
	assert.Equal(t, 4, view.Overview.Farmers)
	require.Len(t, view.Regions, 3)

	// sorted by region name
	assert.Equal(t, "Kisumu", view.Regions[0].Region)
	assert.Equal(t, "Narok", view.Regions[1].Region)
	assert.Equal(t, "Unspecified", view.Regions[2].Region)

	narok := view.Regions[1]
	assert.Equal(t, 2, narok.Farmers)
	assert.Equal(t, 5.0, narok.LandArea)
	assert.Equal(t, 5.0*yieldPerAcre, narok.ProductionEstimate)
	assert.Equal(t, "high", narok.RiskTag, "half the region is high risk")
	assert.Equal(t, "low", view.Regions[0].RiskTag)
}

func TestAgronomistView_AssignmentsAndVisits(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	mine, err := st.Farmers.Create(ctx, map[string]interface{}{
		"name": "Njeri", "agronomistId": 7.0, "healthScore": 55.0,
		"plantingDate": day(-10), "harvestDate": day(90),
	})
	require.NoError(t, err)
	_, err = st.Farmers.Create(ctx, map[string]interface{}{"name": "Other", "agronomistId": 8.0, "healthScore": 90.0})
	require.NoError(t, err)

	_, err = st.Allocations.Create(ctx, map[string]interface{}{"farmerId": float64(mine.ID), "quantity": 40.0, "date": day(-2)})
	require.NoError(t, err)
	_, err = st.Allocations.Create(ctx, map[string]interface{}{"farmerId": float64(mine.ID), "quantity": 60.0, "date": day(-1)})
	require.NoError(t, err)
	// someone else's allocation never shows up as a visit
	_, err = st.Allocations.Create(ctx, map[string]interface{}{"farmerId": 2.0, "quantity": 10.0, "date": day(0)})
	require.NoError(t, err)

	view, err := svc.Agronomist(ctx, Principal{UserID: 7, Role: RoleAgronomist})
	require.NoError(t, err)
	require.Len(t, view.Farmers, 1)
	assert.Equal(t, "Njeri", view.Farmers[0].Farmer.Name)
	assert.True(t, view.Farmers[0].Vulnerable, "health score below the floor")
	assert.Equal(t, 10.0, view.Farmers[0].Progress)
	assert.Equal(t, "Germination", view.Farmers[0].CropStage)

	require.Len(t, view.RecentVisits, 2)
	assert.Equal(t, day(-1), view.RecentVisits[0].Date, "newest first")
	assert.Equal(t, "Njeri", view.RecentVisits[0].FarmerName)
}

func TestProcurementView_ReconciliationAndForecast(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	_, err := st.Contracts.Create(ctx, map[string]interface{}{"supplierName": "A", "status": "active", "contractedQuantity": 100.0})
	require.NoError(t, err)
	_, err = st.Contracts.Create(ctx, map[string]interface{}{"supplierName": "B", "contractedQuantity": 50.0})
	require.NoError(t, err)

	// paid, closed, valued on accepted quantity
	_, err = st.Orders.Create(ctx, map[string]interface{}{
		"supplierName": "A", "status": "received", "paymentStatus": "paid",
		"quantityOrdered": 100.0, "quantityAccepted": 80.0, "quantityRejected": 20.0,
		"rejectionReason": "moisture", "unitPrice": 10.0, "expectedDelivery": day(3),
	})
	require.NoError(t, err)
	// unpaid, still open, valued on ordered quantity
	_, err = st.Orders.Create(ctx, map[string]interface{}{
		"supplierName": "B", "status": "pending",
		"quantityOrdered": 50.0, "unitPrice": 8.0, "expectedDelivery": day(5),
	})
	require.NoError(t, err)

	_, err = st.Allocations.Create(ctx, map[string]interface{}{"farmerId": 1.0, "quantity": 90.0, "date": day(4)})
	require.NoError(t, err)

	view, err := svc.Procurement(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Reconciliation.ActiveContracts)
	assert.Equal(t, 1, view.Reconciliation.PendingContracts)
	assert.Equal(t, 150.0, view.Reconciliation.ContractedTotal)
	assert.Equal(t, 800.0, view.Reconciliation.AmountPaid)
	assert.Equal(t, 400.0, view.Reconciliation.AmountOutstanding)

	require.Len(t, view.SourcingLog, 1)
	assert.Equal(t, "A", view.SourcingLog[0].Supplier)
	assert.Equal(t, 20.0, view.SourcingLog[0].Rejected)
	assert.Equal(t, "moisture", view.SourcingLog[0].Reason)

	assert.Equal(t, 150.0, view.Forecast.Demand)
	assert.Equal(t, 90.0, view.Forecast.Supply)
	assert.Equal(t, 60.0, view.Forecast.Shortfall)
}
