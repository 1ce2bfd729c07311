package analytics

import (
	"shamba-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes each analytic as one GET route.
type Handlers struct {
	Service *Service
}

// Overview GET /api/v1/analytics/overview
func (h *Handlers) Overview(c *fiber.Ctx) error {
	data, err := h.Service.Overview(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Overview computed", data)
}

// SupplyDemand GET /api/v1/analytics/supply-demand?days=7|30|90
func (h *Handlers) SupplyDemand(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	data, err := h.Service.SupplyDemand(c.Context(), days)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Supply/demand series computed", data)
}

// Varieties GET /api/v1/analytics/varieties
func (h *Handlers) Varieties(c *fiber.Ctx) error {
	data, err := h.Service.VarietyDistribution(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Variety distribution computed", data)
}

// RiskAlerts GET /api/v1/analytics/risk-alerts
func (h *Handlers) RiskAlerts(c *fiber.Ctx) error {
	data, err := h.Service.RiskAlerts(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Risk alerts computed", data)
}

// AggregatorStats GET /api/v1/analytics/aggregator-stats
func (h *Handlers) AggregatorStats(c *fiber.Ctx) error {
	data, err := h.Service.AggregatorStats(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Aggregator stats computed", data)
}

// ContractStats GET /api/v1/analytics/contract-stats
func (h *Handlers) ContractStats(c *fiber.Ctx) error {
	data, err := h.Service.ContractStats(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Contract stats computed", data)
}

// CostAnalysis GET /api/v1/analytics/cost-analysis
func (h *Handlers) CostAnalysis(c *fiber.Ctx) error {
	data, err := h.Service.CostAnalysis(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Cost analysis computed", data)
}
