// Package handlers provides HTTP handlers for client, contract and book reports.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/esg"
	"github.com/masterc/wealthdesk/internal/modules/reports"
)

// Handler handles report HTTP requests
type Handler struct {
	service *reports.Service
	log     zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *reports.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// entity reads {kind} and {id} from the route
func entity(r *http.Request) (domain.EntityKind, int64, error) {
	kind, err := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", 0, err
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, chi.URLParam(r, "id"))
	}
	return kind, id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrInvalidInput, key, raw)
	}
	return v, nil
}

func queryDimension(r *http.Request) (domain.Dimension, error) {
	raw := r.URL.Query().Get("dimension")
	if raw == "" {
		return domain.DimensionGeneral, nil
	}
	return domain.ParseDimension(raw)
}

// entityHandler adapts a per-entity report to an http.HandlerFunc
func (h *Handler) entityHandler(fn func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, id, err := entity(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		data, err := fn(kind, id, r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respond(w, r, data)
	}
}

// HandleGetMetrics handles GET /api/{kind}/{id}/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.LatestMetrics(kind, id)
	})(w, r)
}

// HandleGetAnnualValuation handles GET /api/{kind}/{id}/annual-valuation
func (h *Handler) HandleGetAnnualValuation(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.AnnualValuation(kind, id)
	})(w, r)
}

// HandleGetMonthlyValuation handles GET /api/{kind}/{id}/monthly-valuation
func (h *Handler) HandleGetMonthlyValuation(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.MonthlyValuation(kind, id)
	})(w, r)
}

// HandleGetCumulativeMovements handles GET /api/{kind}/{id}/cumulative-movements?year=
func (h *Handler) HandleGetCumulativeMovements(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error) {
		year, err := queryInt(r, "year")
		if err != nil {
			return nil, err
		}
		return h.service.CumulativeMovements(kind, id, year)
	})(w, r)
}

// HandleGetAnnualMovements handles GET /api/{kind}/{id}/annual-movements
func (h *Handler) HandleGetAnnualMovements(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.AnnualMovements(kind, id)
	})(w, r)
}

// HandleGetMovementStats handles GET /api/{kind}/{id}/movement-stats
func (h *Handler) HandleGetMovementStats(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.MovementStats(kind, id)
	})(w, r)
}

// HandleGetAnnualPerformance handles GET /api/{kind}/{id}/annual-performance
func (h *Handler) HandleGetAnnualPerformance(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.AnnualPerformance(kind, id)
	})(w, r)
}

// HandleGetDates handles GET /api/{kind}/{id}/dates
func (h *Handler) HandleGetDates(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		return h.service.Dates(kind, id)
	})(w, r)
}

// HandleGetDistribution handles GET /api/{kind}/{id}/distribution?dimension=&limit=
func (h *Handler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error) {
		dim, err := queryDimension(r)
		if err != nil {
			return nil, err
		}
		limit, err := queryInt(r, "limit")
		if err != nil {
			return nil, err
		}
		return h.service.LatestDistribution(kind, id, dim, limit)
	})(w, r)
}

// HandleGetInstruments handles GET /api/{kind}/{id}/instruments?date=
func (h *Handler) HandleGetInstruments(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error) {
		return h.service.SyntheseInstruments(domain.EntityScope(kind, id), r.URL.Query().Get("date"))
	})(w, r)
}

// HandleGetESG handles GET /api/{kind}/{id}/esg?date=
func (h *Handler) HandleGetESG(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error) {
		return h.service.ScopeESG(domain.EntityScope(kind, id), r.URL.Query().Get("date"))
	})(w, r)
}

// HandleGetCompare handles GET /api/{kind}/{id}/compare?benchmark=
func (h *Handler) HandleGetCompare(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error) {
		name := r.URL.Query().Get("benchmark")
		if name == "" {
			return nil, fmt.Errorf("%w: benchmark is required", domain.ErrInvalidInput)
		}
		return h.service.CompareEntityToBenchmark(kind, id, name)
	})(w, r)
}

// HandleGetProfile handles GET /api/{kind}/{id}/profile
// Clients come with their contracts and open/closed counts
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, _ *http.Request) (interface{}, error) {
		if kind == domain.EntityClient {
			return h.service.ClientProfile(id)
		}
		return h.service.Contract(id)
	})(w, r)
}

// HandleGetPositionHistory handles GET /api/contracts/{id}/instruments/{instrument}/history
func (h *Handler) HandleGetPositionHistory(w http.ResponseWriter, r *http.Request) {
	h.entityHandler(func(kind domain.EntityKind, id int64, r *http.Request) (interface{}, error) {
		if kind != domain.EntityContract {
			return nil, fmt.Errorf("%w: position history is kept per contract", domain.ErrInvalidInput)
		}
		raw := chi.URLParam(r, "instrument")
		instrumentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid instrument id %q", domain.ErrInvalidInput, raw)
		}
		return h.service.PositionHistory(id, instrumentID)
	})(w, r)
}

// HandleGetBookMetrics handles GET /api/book/metrics
// Returns the latest metrics of every client in one partitioned query
func (h *Handler) HandleGetBookMetrics(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.LatestMetricsAll(domain.EntityClient)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, all)
}

// HandleGetRiskDrift handles GET /api/book/risk-drift
func (h *Handler) HandleGetRiskDrift(w http.ResponseWriter, r *http.Request) {
	drift, err := h.service.RiskDrift()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, drift)
}

// HandleGetVolumetry handles GET /api/book/volumetry?date=
func (h *Handler) HandleGetVolumetry(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Volumetry(r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, v)
}

// HandleGetBookSnapshot handles GET /api/book/snapshot?date=
func (h *Handler) HandleGetBookSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.BookSnapshot(r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, snapshot)
}

// HandleGetBookTotals handles GET /api/book/totals?date=
func (h *Handler) HandleGetBookTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.BookTotals(r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, totals)
}

// HandleGetBookInstruments handles GET /api/book/instruments?date=
func (h *Handler) HandleGetBookInstruments(w http.ResponseWriter, r *http.Request) {
	synthese, err := h.service.SyntheseInstruments(domain.BookScope, r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, synthese)
}

// HandleGetBookDistribution handles GET /api/book/distribution?date=&dimension=&limit=
func (h *Handler) HandleGetBookDistribution(w http.ResponseWriter, r *http.Request) {
	dim, err := queryDimension(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	d, err := h.service.BookDistribution(r.URL.Query().Get("date"), dim, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, d)
}

// HandleGetRemuneration handles GET /api/book/remuneration
func (h *Handler) HandleGetRemuneration(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Remuneration()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, years)
}

// HandleGetBenchmarks handles GET /api/benchmarks
func (h *Handler) HandleGetBenchmarks(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Benchmarks()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, names)
}

// HandleGetBenchmark handles GET /api/benchmarks/{name}
func (h *Handler) HandleGetBenchmark(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Benchmark(chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, b)
}

// holdingRequest is one weighted line of POST /api/esg/aggregate
type holdingRequest struct {
	Weight float64 `json:"weight"`
	E      string  `json:"e"`
	S      string  `json:"s"`
	G      string  `json:"g"`
}

// HandleAggregateESG handles POST /api/esg/aggregate
func (h *Handler) HandleAggregateESG(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Holdings []holdingRequest `json:"holdings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err))
		return
	}

	holdings := make([]esg.Holding, len(req.Holdings))
	for i, hr := range req.Holdings {
		holdings[i] = esg.Holding{
			Weight: hr.Weight,
			E:      esg.ParseLetter(hr.E),
			S:      esg.ParseLetter(hr.S),
			G:      esg.ParseLetter(hr.G),
		}
	}

	h.respond(w, r, reports.ComputeESG(holdings))
}
