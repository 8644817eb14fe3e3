package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/book", func(r chi.Router) {
		r.Get("/metrics", h.HandleGetBookMetrics)
		r.Get("/risk-drift", h.HandleGetRiskDrift)
		r.Get("/volumetry", h.HandleGetVolumetry)
		r.Get("/snapshot", h.HandleGetBookSnapshot)
		r.Get("/totals", h.HandleGetBookTotals)
		r.Get("/instruments", h.HandleGetBookInstruments)
		r.Get("/distribution", h.HandleGetBookDistribution)
		r.Get("/remuneration", h.HandleGetRemuneration)
	})

	r.Route("/benchmarks", func(r chi.Router) {
		r.Get("/", h.HandleGetBenchmarks)
		r.Get("/{name}", h.HandleGetBenchmark)
	})

	r.Post("/esg/aggregate", h.HandleAggregateESG)

	// kind is "clients" or "contracts"
	r.Route("/{kind}/{id}", func(r chi.Router) {
		r.Get("/profile", h.HandleGetProfile)
		r.Get("/metrics", h.HandleGetMetrics)
		r.Get("/annual-valuation", h.HandleGetAnnualValuation)
		r.Get("/monthly-valuation", h.HandleGetMonthlyValuation)
		r.Get("/cumulative-movements", h.HandleGetCumulativeMovements)
		r.Get("/annual-movements", h.HandleGetAnnualMovements)
		r.Get("/movement-stats", h.HandleGetMovementStats)
		r.Get("/annual-performance", h.HandleGetAnnualPerformance)
		r.Get("/dates", h.HandleGetDates)
		r.Get("/distribution", h.HandleGetDistribution)
		r.Get("/instruments", h.HandleGetInstruments)
		r.Get("/instruments/{instrument}/history", h.HandleGetPositionHistory)
		r.Get("/esg", h.HandleGetESG)
		r.Get("/compare", h.HandleGetCompare)
	})
}
