package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/errors"
	"github.com/meenmo/curvelib/instrument"
	"github.com/meenmo/curvelib/internal/logging"
	"github.com/meenmo/curvelib/marketdata"
	"github.com/meenmo/curvelib/store"
)

type server struct {
	store   store.Store
	source  marketdata.Source
	builder *bootstrap.Builder
	log     *zap.Logger
}

func newServer(st store.Store, src marketdata.Source, builder *bootstrap.Builder) *server {
	return &server{
		store:   st,
		source:  src,
		builder: builder,
		log:     logging.Named("curved"),
	}
}

func (s *server) routes() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/curves", s.handleBuildCurve).Methods("POST")
	api.HandleFunc("/curves", s.handleListCurves).Methods("GET")
	api.HandleFunc("/curves/{id}", s.handleGetCurve).Methods("GET")
	api.HandleFunc("/curves/{id}", s.handleDeleteCurve).Methods("DELETE")
	api.HandleFunc("/curves/{id}/discount-factor", s.handleDiscountFactor).Methods("GET")
	api.HandleFunc("/curves/{id}/zero-rate", s.handleZeroRate).Methods("GET")
	return router
}

// buildRequest names the quote strips a curve set is built from. Strips are
// pulled from the daemon's market data source.
type buildRequest struct {
	ID       string            `json:"id,omitempty"`
	Date     string            `json:"date,omitempty"`
	Discount string            `json:"discount"`
	Forwards map[string]string `json:"forwards,omitempty"`
}

func (s *server) handleBuildCurve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Discount == "" {
		http.Error(w, "discount curve id is required", http.StatusBadRequest)
		return
	}
	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		asOf = parsed
	}

	discount, err := s.fetchStrip(r, req.Discount, asOf)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tenors := make([]bootstrap.TenorInstruments, 0, len(req.Forwards))
	for tenor, curveID := range req.Forwards {
		insts, err := s.fetchStrip(r, curveID, asOf)
		if err != nil {
			s.writeError(w, err)
			return
		}
		tenors = append(tenors, bootstrap.TenorInstruments{
			Tenor:       curve.Tenor(strings.ToUpper(tenor)),
			Instruments: insts,
		})
	}

	cs, err := s.builder.BuildParallel(discount, tenors)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := req.ID
	if id == "" {
		id = fmt.Sprintf("%s-%s", req.Discount, asOf.Format("2006-01-02"))
	}
	snap, err := store.SnapshotCurveSet(id, asOf, cs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(ctx, snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("curve set built",
		zap.String("id", id),
		zap.Int("forwards", len(tenors)))

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(snap)
}

func (s *server) handleListCurves(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string][]string{"curves": ids})
}

func (s *server) handleGetCurve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap, err := s.store.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(snap)
}

func (s *server) handleDeleteCurve(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDiscountFactor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]
	t, tenor, ok := s.pointQuery(w, r)
	if !ok {
		return
	}
	c, err := s.curveAt(r, id, tenor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	df, err := c.DiscountFactor(t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(struct {
		ID             string  `json:"id"`
		Tenor          string  `json:"tenor,omitempty"`
		T              float64 `json:"t"`
		DiscountFactor float64 `json:"discount_factor"`
	}{id, tenor, t, df})
}

func (s *server) handleZeroRate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]
	t, tenor, ok := s.pointQuery(w, r)
	if !ok {
		return
	}
	c, err := s.curveAt(r, id, tenor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	zero, err := c.ZeroRate(t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(struct {
		ID       string  `json:"id"`
		Tenor    string  `json:"tenor,omitempty"`
		T        float64 `json:"t"`
		ZeroRate float64 `json:"zero_rate"`
	}{id, tenor, t, zero})
}

func (s *server) pointQuery(w http.ResponseWriter, r *http.Request) (float64, string, bool) {
	q := r.URL.Query()
	tStr := q.Get("t")
	if tStr == "" {
		http.Error(w, "missing query params", http.StatusBadRequest)
		return 0, "", false
	}
	t, err := strconv.ParseFloat(tStr, 64)
	if err != nil {
		http.Error(w, "invalid t", http.StatusBadRequest)
		return 0, "", false
	}
	return t, strings.ToUpper(q.Get("tenor")), true
}

// curveAt restores the snapshot and picks one curve from it. An unknown
// tenor falls back to the discount curve, matching CurveSet semantics.
func (s *server) curveAt(r *http.Request, id, tenor string) (*curve.Curve, error) {
	snap, err := s.store.Load(r.Context(), id)
	if err != nil {
		return nil, err
	}
	cs, err := snap.RestoreCurveSet()
	if err != nil {
		return nil, err
	}
	if tenor == "" {
		return cs.Discount, nil
	}
	return cs.ForwardCurve(curve.Tenor(tenor)), nil
}

func (s *server) fetchStrip(r *http.Request, curveID string, asOf time.Time) ([]instrument.Instrument, error) {
	quotes, err := s.source.Quotes(r.Context(), curveID, asOf)
	if err != nil {
		return nil, err
	}
	return marketdata.Instruments(quotes)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsType(err, errors.TypeNotFound):
		status = http.StatusNotFound
	case errors.IsType(err, errors.TypeOutOfBounds),
		errors.IsType(err, errors.TypeInstrument),
		errors.IsType(err, errors.TypeCurve):
		status = http.StatusBadRequest
	case errors.IsType(err, errors.TypeBootstrap):
		status = http.StatusUnprocessableEntity
	case errors.IsType(err, errors.TypeMarketData):
		status = http.StatusBadGateway
	}
	s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}
