package analytics

import "context"

// CostModel is a fixed per-unit cost split used for the illustrative cost
// breakdown. Shares should sum to 1; this is not a pricing engine.
type CostModel struct {
	UnitCost       float64
	LaborShare     float64
	MaterialsShare float64
	LogisticsShare float64
	OtherShare     float64
}

// DefaultCostModel mirrors the dashboard's stock assumptions (KES per kg).
func DefaultCostModel(unitCost float64) CostModel {
	if unitCost <= 0 {
		unitCost = 25
	}
	return CostModel{
		UnitCost:       unitCost,
		LaborShare:     0.40,
		MaterialsShare: 0.30,
		LogisticsShare: 0.20,
		OtherShare:     0.10,
	}
}

// CostBreakdown is the derived cost view over total allocated quantity.
type CostBreakdown struct {
	TotalQuantity float64 `json:"totalQuantity"`
	UnitCost      float64 `json:"unitCost"`
	TotalCost     float64 `json:"totalCost"`
	Labor         float64 `json:"labor"`
	Materials     float64 `json:"materials"`
	Logistics     float64 `json:"logistics"`
	Other         float64 `json:"other"`
}

// CostAnalysis derives the cost breakdown strictly from total allocated
// quantity and the configured unit cost model.
func (s *Service) CostAnalysis(ctx context.Context) (*CostBreakdown, error) {
	allocations, err := s.Store.Allocations.List(ctx)
	if err != nil {
		return nil, err
	}
	var quantity float64
	for _, a := range allocations {
		quantity += a.Quantity
	}
	total := quantity * s.Cost.UnitCost
	return &CostBreakdown{
		TotalQuantity: quantity,
		UnitCost:      s.Cost.UnitCost,
		TotalCost:     total,
		Labor:         total * s.Cost.LaborShare,
		Materials:     total * s.Cost.MaterialsShare,
		Logistics:     total * s.Cost.LogisticsShare,
		Other:         total * s.Cost.OtherShare,
	}, nil
}
