package analytics

import (
	"context"
	"math"
	"strconv"
	"time"

	"shamba-backend/internal/store"
)

const dateLayout = "2006-01-02"

// Service computes derived views over current store contents. Every method
// is a full recomputation per call: nothing is cached, so the numbers can
// never drift from the collections underneath.
type Service struct {
	Store *store.Store
	Cost  CostModel

	// now is overridable in tests; zero value means time.Now.
	now func() time.Time
}

// NewService builds a Service. A nil clock means time.Now.
func NewService(st *store.Store, cost CostModel, clock func() time.Time) *Service {
	return &Service{Store: st, Cost: cost, now: clock}
}

func (s *Service) today() time.Time {
	t := time.Now().UTC()
	if s.now != nil {
		t = s.now().UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDay reads a YYYY-MM-DD business date, tolerating full timestamps by
// taking the date prefix. Bad dates simply fall out of date-based folds.
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

// Overview is the headline KPI block.
type Overview struct {
	Farmers                int     `json:"farmers"`
	Crops                  int     `json:"crops"`
	PendingOrders          int     `json:"pendingOrders"`
	Allocations            int     `json:"allocations"`
	TotalAllocatedQuantity float64 `json:"totalAllocatedQuantity"`
	CompletionRate         float64 `json:"completionRate"`       // completed allocations, percent
	AcceptanceRate         float64 `json:"acceptanceRate"`       // accepted/ordered over closed orders, percent
	AggregatorDependency   float64 `json:"aggregatorDependency"` // fraction of orders sourced from aggregators
}

// Overview computes the headline KPIs. Empty collections give zeros, never
// an error.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	farmers, err := s.Store.Farmers.List(ctx)
	if err != nil {
		return nil, err
	}
	crops, err := s.Store.Crops.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Store.Orders.List(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := s.Store.Allocations.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		Farmers:     len(farmers),
		Crops:       len(crops),
		Allocations: len(allocations),
	}

	completed := 0
	for _, a := range allocations {
		out.TotalAllocatedQuantity += a.Quantity
		if a.Status == "completed" {
			completed++
		}
	}
	if len(allocations) > 0 {
		out.CompletionRate = float64(completed) / float64(len(allocations)) * 100
	}

	var ordered, accepted float64
	fromAggregator := 0
	for _, o := range orders {
		if o.Status == "pending" || o.Status == "ordered" {
			out.PendingOrders++
		}
		if o.Status == "received" || o.Status == "completed" {
			ordered += o.QuantityOrdered
			accepted += o.QuantityAccepted
		}
		if o.Source == "aggregator" {
			fromAggregator++
		}
	}
	if ordered > 0 {
		out.AcceptanceRate = accepted / ordered * 100
	}
	if len(orders) > 0 {
		out.AggregatorDependency = float64(fromAggregator) / float64(len(orders))
	}
	return out, nil
}

// DayBalance is one day of the supply-vs-demand series.
type DayBalance struct {
	Date    string  `json:"date"`
	Supply  float64 `json:"supply"`
	Demand  float64 `json:"demand"`
	Gap     float64 `json:"gap"`
	Surplus float64 `json:"surplus"`
	Deficit float64 `json:"deficit"`
}

// SupplyDemand folds allocations (supply) and order expected deliveries
// (demand) into a daily series over the next days days. Windows other than
// 7/30/90 fall back to 30.
func (s *Service) SupplyDemand(ctx context.Context, days int) ([]DayBalance, error) {
	if days != 7 && days != 30 && days != 90 {
		days = 30
	}
	allocations, err := s.Store.Allocations.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Store.Orders.List(ctx)
	if err != nil {
		return nil, err
	}

	supply := make(map[string]float64)
	for _, a := range allocations {
		if d, ok := parseDay(a.Date); ok {
			supply[d.Format(dateLayout)] += a.Quantity
		}
	}
	demand := make(map[string]float64)
	for _, o := range orders {
		if d, ok := parseDay(o.ExpectedDelivery); ok {
			demand[d.Format(dateLayout)] += o.QuantityOrdered
		}
	}

	start := s.today()
	series := make([]DayBalance, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		gap := supply[day] - demand[day]
		series = append(series, DayBalance{
			Date:    day,
			Supply:  supply[day],
			Demand:  demand[day],
			Gap:     gap,
			Surplus: math.Max(0, gap),
			Deficit: math.Max(0, -gap),
		})
	}
	return series, nil
}

// VarietySlice is one crop's share of the farmer population.
type VarietySlice struct {
	Crop    string  `json:"crop"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// VarietyDistribution groups farmers by primary crop.
func (s *Service) VarietyDistribution(ctx context.Context) ([]VarietySlice, error) {
	farmers, err := s.Store.Farmers.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	order := []string{}
	for _, f := range farmers {
		crop := f.Crop
		if crop == "" {
			crop = "unspecified"
		}
		if _, seen := counts[crop]; !seen {
			order = append(order, crop)
		}
		counts[crop]++
	}
	out := make([]VarietySlice, 0, len(order))
	for _, crop := range order {
		slice := VarietySlice{Crop: crop, Count: counts[crop]}
		if len(farmers) > 0 {
			slice.Percent = math.Round(float64(counts[crop])/float64(len(farmers))*1000) / 10
		}
		out = append(out, slice)
	}
	return out, nil
}

// Alert titles are part of the API contract with the frontend.
const (
	AlertUnallocatedFarmers    = "Unallocated Farmers"
	AlertOrphanedAllocations   = "Orphaned Allocations"
	AlertContractsExpiringSoon = "Contracts Expiring Soon"
)

// Alert is one risk-alert block. Items carries the offending names/ids for
// display.
type Alert struct {
	Title    string   `json:"title"`
	Severity string   `json:"severity"` // warning | error
	Priority string   `json:"priority"` // medium | high
	Count    int      `json:"count"`
	Message  string   `json:"message"`
	Items    []string `json:"items"`
}

// RiskAlerts evaluates the three checks independently and unions the hits in
// check order. Recomputation is idempotent: removing the inciting record
// removes the alert on the next call.
func (s *Service) RiskAlerts(ctx context.Context) ([]Alert, error) {
	farmers, err := s.Store.Farmers.List(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := s.Store.Allocations.List(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := s.Store.Contracts.List(ctx)
	if err != nil {
		return nil, err
	}

	alerts := []Alert{}

	allocated := make(map[int64]bool, len(allocations))
	for _, a := range allocations {
		allocated[a.FarmerID] = true
	}
	var unallocated []string
	for _, f := range farmers {
		if !allocated[f.ID] {
			unallocated = append(unallocated, f.Name)
		}
	}
	if len(unallocated) > 0 {
		alerts = append(alerts, Alert{
			Title:    AlertUnallocatedFarmers,
			Severity: "warning",
			Priority: "medium",
			Count:    len(unallocated),
			Message:  "Farmers with no supply allocation: " + joinLimited(unallocated),
			Items:    unallocated,
		})
	}

	known := make(map[int64]bool, len(farmers))
	for _, f := range farmers {
		known[f.ID] = true
	}
	var orphaned []string
	for _, a := range allocations {
		if !known[a.FarmerID] {
			orphaned = append(orphaned, "allocation #"+itoa(a.ID)+" -> farmer #"+itoa(a.FarmerID))
		}
	}
	if len(orphaned) > 0 {
		alerts = append(alerts, Alert{
			Title:    AlertOrphanedAllocations,
			Severity: "error",
			Priority: "high",
			Count:    len(orphaned),
			Message:  "Allocations referencing unknown farmers: " + joinLimited(orphaned),
			Items:    orphaned,
		})
	}

	today := s.today()
	var expiring []string
	for _, c := range contracts {
		end, ok := parseDay(c.EndDate)
		if !ok {
			continue
		}
		daysLeft := int(end.Sub(today).Hours() / 24)
		if daysLeft >= 1 && daysLeft <= 30 {
			expiring = append(expiring, c.SupplierName)
		}
	}
	if len(expiring) > 0 {
		alerts = append(alerts, Alert{
			Title:    AlertContractsExpiringSoon,
			Severity: "warning",
			Priority: "medium",
			Count:    len(expiring),
			Message:  "Contracts ending within 30 days: " + joinLimited(expiring),
			Items:    expiring,
		})
	}
	return alerts, nil
}

// AggregatorStats summarizes the aggregator book. Averages are rounded to
// the nearest integer; an empty book averages to 0, never NaN.
type AggregatorStats struct {
	Total          int            `json:"total"`
	ByType         map[string]int `json:"byType"`
	TotalVolume    float64        `json:"totalVolume"`
	AvgReliability int            `json:"avgReliability"`
	AvgQuality     int            `json:"avgQuality"`
}

func (s *Service) AggregatorStats(ctx context.Context) (*AggregatorStats, error) {
	aggregators, err := s.Store.Aggregators.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &AggregatorStats{Total: len(aggregators), ByType: map[string]int{}}
	var reliability, quality float64
	for _, a := range aggregators {
		out.ByType[a.Type]++
		out.TotalVolume += a.HistoricalVolume
		reliability += a.ReliabilityScore
		quality += a.QualityScore
	}
	if len(aggregators) > 0 {
		out.AvgReliability = int(math.Round(reliability / float64(len(aggregators))))
		out.AvgQuality = int(math.Round(quality / float64(len(aggregators))))
	}
	return out, nil
}

// ContractStats summarizes the contract book.
type ContractStats struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	TotalQuantity  float64        `json:"totalQuantity"`
	AvgFulfillment int            `json:"avgFulfillment"`
}

func (s *Service) ContractStats(ctx context.Context) (*ContractStats, error) {
	contracts, err := s.Store.Contracts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ContractStats{Total: len(contracts), ByStatus: map[string]int{}}
	var fulfillment float64
	for _, c := range contracts {
		out.ByStatus[c.Status]++
		out.TotalQuantity += c.ContractedQuantity
		fulfillment += c.FulfillmentPercent
	}
	if len(contracts) > 0 {
		out.AvgFulfillment = int(math.Round(fulfillment / float64(len(contracts))))
	}
	return out, nil
}

func joinLimited(items []string) string {
	const limit = 5
	out := ""
	for i, item := range items {
		if i == limit {
			return out + ", …"
		}
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
