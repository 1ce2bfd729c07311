package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"shamba-backend/internal/analytics"
	"shamba-backend/internal/models"
	"shamba-backend/internal/store"
)

// Roles understood by the composer.
const (
	RoleAdmin       = "admin"
	RoleAgronomist  = "agronomist"
	RoleProcurement = "procurement"
	RoleFarmer      = "farmer"
)

// Principal is the authenticated identity handed in by the auth layer.
// The composer trusts it as-is.
type Principal struct {
	UserID   int64
	Name     string
	Role     string
	FarmerID *int64
}

const (
	dateLayout = "2006-01-02"

	// vulnerability threshold for the agronomist view
	healthScoreFloor = 60.0

	// rough production estimate, kg per acre
	yieldPerAcre = 1350.0
)

// Service composes role-scoped dashboard views from store reads plus
// analytics, one pass per request. It never fails on missing records:
// dashboards must always render.
type Service struct {
	Store     *store.Store
	Analytics *analytics.Service

	now func() time.Time
}

func (s *Service) today() time.Time {
	t := time.Now().UTC()
	if s.now != nil {
		t = s.now().UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Compose dispatches on the principal's role. Unknown roles get the farmer
// view, which degrades safely to a placeholder record.
func (s *Service) Compose(ctx context.Context, p Principal) (interface{}, error) {
	switch p.Role {
	case RoleAdmin:
		return s.Admin(ctx)
	case RoleAgronomist:
		return s.Agronomist(ctx, p)
	case RoleProcurement:
		return s.Procurement(ctx)
	default:
		return s.Farmer(ctx, p)
	}
}

// RegionSummary is one region's block on the admin view.
type RegionSummary struct {
	Region             string  `json:"region"`
	Farmers            int     `json:"farmers"`
	LandArea           float64 `json:"landArea"`
	ProductionEstimate float64 `json:"productionEstimate"`
	RiskTag            string  `json:"riskTag"`
}

// AdminView is the admin dashboard payload.
type AdminView struct {
	Role     string              `json:"role"`
	Overview *analytics.Overview `json:"overview"`
	Regions  []RegionSummary     `json:"regions"`
}

func (s *Service) Admin(ctx context.Context) (*AdminView, error) {
	overview, err := s.Analytics.Overview(ctx)
	if err != nil {
		return nil, err
	}
	farmers, err := s.Store.Farmers.List(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		farmers int
		land    float64
		highRisk int
	}
	buckets := make(map[string]*bucket)
	for _, f := range farmers {
		region := f.Region
		if region == "" {
			region = "Unspecified"
		}
		b := buckets[region]
		if b == nil {
			b = &bucket{}
			buckets[region] = b
		}
		b.farmers++
		b.land += f.LandSize
		if f.RiskLevel == "high" {
			b.highRisk++
		}
	}

	regions := make([]RegionSummary, 0, len(buckets))
	for region, b := range buckets {
		share := float64(b.highRisk) / float64(b.farmers)
		tag := "low"
		if share > 0.3 {
			tag = "high"
		} else if share > 0.1 {
			tag = "moderate"
		}
		regions = append(regions, RegionSummary{
			Region:             region,
			Farmers:            b.farmers,
			LandArea:           b.land,
			ProductionEstimate: b.land * yieldPerAcre,
			RiskTag:            tag,
		})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Region < regions[j].Region })

	return &AdminView{Role: RoleAdmin, Overview: overview, Regions: regions}, nil
}

// FarmerStatus is one assigned farmer on the agronomist view.
type FarmerStatus struct {
	Farmer     models.Farmer `json:"farmer"`
	Progress   float64       `json:"progress"`
	CropStage  string        `json:"cropStage"`
	Vulnerable bool          `json:"vulnerable"`
}

// Visit is a recent-activity entry derived from the farmer's allocations.
type Visit struct {
	FarmerID   int64  `json:"farmerId"`
	FarmerName string `json:"farmerName"`
	Date       string `json:"date"`
	Note       string `json:"note"`
}

// AgronomistView is the agronomist dashboard payload.
type AgronomistView struct {
	Role         string         `json:"role"`
	Farmers      []FarmerStatus `json:"farmers"`
	RecentVisits []Visit        `json:"recentVisits"`
}

func (s *Service) Agronomist(ctx context.Context, p Principal) (*AgronomistView, error) {
	farmers, err := s.Store.Farmers.List(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := s.Store.Allocations.List(ctx)
	if err != nil {
		return nil, err
	}

	view := &AgronomistView{Role: RoleAgronomist, Farmers: []FarmerStatus{}, RecentVisits: []Visit{}}
	mine := make(map[int64]string)
	for _, f := range farmers {
		if f.AgronomistID != p.UserID {
			continue
		}
		mine[f.ID] = f.Name
		progress := s.progress(f.PlantingDate, f.HarvestDate)
		view.Farmers = append(view.Farmers, FarmerStatus{
			Farmer:     f,
			Progress:   progress,
			CropStage:  CropStage(progress),
			Vulnerable: f.HealthScore < healthScoreFloor,
		})
	}

	for _, a := range allocations {
		name, ok := mine[a.FarmerID]
		if !ok {
			continue
		}
		view.RecentVisits = append(view.RecentVisits, Visit{
			FarmerID:   a.FarmerID,
			FarmerName: name,
			Date:       a.Date,
			Note:       fmt.Sprintf("Supply check: %.0f kg %s", a.Quantity, a.Status),
		})
	}
	sort.Slice(view.RecentVisits, func(i, j int) bool { return view.RecentVisits[i].Date > view.RecentVisits[j].Date })
	if len(view.RecentVisits) > 5 {
		view.RecentVisits = view.RecentVisits[:5]
	}
	return view, nil
}

// Reconciliation is the contract money/quantity rollup on the procurement
// view.
type Reconciliation struct {
	ActiveContracts    int     `json:"activeContracts"`
	PendingContracts   int     `json:"pendingContracts"`
	CompletedContracts int     `json:"completedContracts"`
	ContractedTotal    float64 `json:"contractedTotal"`
	AmountPaid         float64 `json:"amountPaid"`
	AmountOutstanding  float64 `json:"amountOutstanding"`
}

// SourcingEntry is one recent delivery on the procurement view.
type SourcingEntry struct {
	Supplier string  `json:"supplier"`
	Crop     string  `json:"crop"`
	Accepted float64 `json:"accepted"`
	Rejected float64 `json:"rejected"`
	Reason   string  `json:"reason"`
	Date     string  `json:"date"`
}

// Forecast is the 30-day demand/supply outlook.
type Forecast struct {
	Demand    float64 `json:"demand"`
	Supply    float64 `json:"supply"`
	Shortfall float64 `json:"shortfall"`
}

// ProcurementView is the procurement dashboard payload.
type ProcurementView struct {
	Role           string          `json:"role"`
	Reconciliation Reconciliation  `json:"reconciliation"`
	SourcingLog    []SourcingEntry `json:"sourcingLog"`
	Forecast       Forecast        `json:"forecast"`
}

func (s *Service) Procurement(ctx context.Context) (*ProcurementView, error) {
	contracts, err := s.Store.Contracts.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Store.Orders.List(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.Analytics.SupplyDemand(ctx, 30)
	if err != nil {
		return nil, err
	}

	view := &ProcurementView{Role: RoleProcurement, SourcingLog: []SourcingEntry{}}
	for _, c := range contracts {
		switch c.Status {
		case "active":
			view.Reconciliation.ActiveContracts++
		case "draft":
			view.Reconciliation.PendingContracts++
		case "completed":
			view.Reconciliation.CompletedContracts++
		}
		view.Reconciliation.ContractedTotal += c.ContractedQuantity
	}

	for _, o := range orders {
		value := o.QuantityAccepted * o.UnitPrice
		if o.QuantityAccepted == 0 {
			value = o.QuantityOrdered * o.UnitPrice
		}
		if o.PaymentStatus == "paid" {
			view.Reconciliation.AmountPaid += value
		} else {
			view.Reconciliation.AmountOutstanding += value
		}
		if o.Status == "received" || o.Status == "completed" {
			view.SourcingLog = append(view.SourcingLog, SourcingEntry{
				Supplier: o.SupplierName,
				Crop:     o.Crop,
				Accepted: o.QuantityAccepted,
				Rejected: o.QuantityRejected,
				Reason:   o.RejectionReason,
				Date:     o.UpdatedAt.Format(dateLayout),
			})
		}
	}
	sort.Slice(view.SourcingLog, func(i, j int) bool { return view.SourcingLog[i].Date > view.SourcingLog[j].Date })
	if len(view.SourcingLog) > 10 {
		view.SourcingLog = view.SourcingLog[:10]
	}

	for _, day := range series {
		view.Forecast.Demand += day.Demand
		view.Forecast.Supply += day.Supply
	}
	view.Forecast.Shortfall = math.Max(0, view.Forecast.Demand-view.Forecast.Supply)
	return view, nil
}

// PeerMetrics is the region-scoped comparison block on the farmer view.
type PeerMetrics struct {
	Count       int     `json:"count"`
	AvgProgress float64 `json:"avgProgress"`
	AvgLandSize float64 `json:"avgLandSize"`
}

// FarmerView is the farmer dashboard payload. Placeholder is set when the
// principal resolves to no farmer record; the view still renders.
type FarmerView struct {
	Role        string        `json:"role"`
	Placeholder bool          `json:"placeholder"`
	Farmer      models.Farmer `json:"farmer"`
	Progress    float64       `json:"progress"`
	CropStage   string        `json:"cropStage"`
	Advisories  []string      `json:"advisories"`
	Peers       PeerMetrics   `json:"peers"`
}

func (s *Service) Farmer(ctx context.Context, p Principal) (*FarmerView, error) {
	var farmer *models.Farmer
	if p.FarmerID != nil {
		f, err := s.Store.Farmers.Get(ctx, *p.FarmerID)
		if err == nil {
			farmer = f
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	view := &FarmerView{Role: RoleFarmer, Advisories: []string{}}
	if farmer == nil {
		view.Placeholder = true
		view.Farmer = models.Farmer{Name: p.Name, Region: "Unspecified", RiskLevel: "low"}
		return view, nil
	}

	view.Farmer = *farmer
	view.Progress = s.progress(farmer.PlantingDate, farmer.HarvestDate)
	view.CropStage = CropStage(view.Progress)
	view.Advisories = advisoriesFor(view.CropStage, farmer.RiskLevel)

	farmers, err := s.Store.Farmers.List(ctx)
	if err != nil {
		return nil, err
	}
	var progressSum, landSum float64
	for _, f := range farmers {
		if f.ID == farmer.ID || f.Region != farmer.Region {
			continue
		}
		view.Peers.Count++
		progressSum += s.progress(f.PlantingDate, f.HarvestDate)
		landSum += f.LandSize
	}
	if view.Peers.Count > 0 {
		view.Peers.AvgProgress = math.Round(progressSum/float64(view.Peers.Count)*10) / 10
		view.Peers.AvgLandSize = math.Round(landSum/float64(view.Peers.Count)*100) / 100
	}
	return view, nil
}

// progress derives season progress from planting/harvest dates:
// clamp((today-planting)/(harvest-planting)*100, 5, 95). Unusable dates
// give 0.
func (s *Service) progress(planting, harvest string) float64 {
	start, ok1 := parseDay(planting)
	end, ok2 := parseDay(harvest)
	if !ok1 || !ok2 || !end.After(start) {
		return 0
	}
	elapsed := s.today().Sub(start).Hours()
	span := end.Sub(start).Hours()
	pct := elapsed / span * 100
	return math.Round(clamp(pct, 5, 95)*10) / 10
}

// CropStage maps progress to the display stage.
func CropStage(progress float64) string {
	switch {
	case progress < 25:
		return "Germination"
	case progress < 50:
		return "Vegetative"
	case progress < 75:
		return "Flowering"
	default:
		return "Harvest Ready"
	}
}

func advisoriesFor(stage, riskLevel string) []string {
	out := []string{}
	switch stage {
	case "Germination":
		out = append(out, "Monitor emergence and gap-fill within two weeks of planting.")
	case "Vegetative":
		out = append(out, "Top-dress and scout for fall armyworm weekly.")
	case "Flowering":
		out = append(out, "Avoid moisture stress; flowering determines yield.")
	default:
		out = append(out, "Schedule harvest labor and confirm collection dates.")
	}
	if riskLevel == "high" {
		out = append(out, "Flagged high risk: extension officer visit recommended.")
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseDay(s string) (time.Time, bool) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
