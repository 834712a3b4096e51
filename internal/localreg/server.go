// Package localreg serves the registry HTTP contract from the locally
// ingested price book, so the search client can run against a spreadsheet
// without the hosted backend.
package localreg

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/logging"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/registry"
)

// candidatesPerKind caps each kind in a /search response.
const candidatesPerKind = 10

// maxRequestBody caps request bodies.
const maxRequestBody = 1 << 20

// Backend answers registry queries. *store.Store satisfies it.
type Backend interface {
	SearchCandidates(q string, perKind int) ([]catalog.Candidate, error)
	TradeGroups(sel catalog.Selection) ([]catalog.TradeGroup, error)
	SupplierTradePerformance() ([]map[string]any, error)
	ProductPerformance(tradeCode, supplier string) ([]map[string]any, error)
}

// Server wires HTTP handlers.
type Server struct {
	backend Backend
	events  *otel.Logger
}

// NewServer creates the router. Paths match the hosted registry so a
// registry.Client pointed at this server needs no changes.
func NewServer(backend Backend, events *otel.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	srv := &Server{backend: backend, events: events}
	r.Use(srv.observe)

	r.Get("/health", srv.handleHealth)
	r.Post("/"+registry.PathSearch, srv.handleSearch)
	r.Post("/"+registry.PathSearchResults, srv.handleResults)
	r.Get("/"+registry.PathSupplierRanking, srv.handleSupplierRanking)
	r.Post("/"+registry.PathProductImpact, srv.handleProductImpact)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decode(w, r, &req) {
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	cands, err := s.backend.SearchCandidates(q, candidatesPerKind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cands)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	var sel catalog.Selection
	if !decode(w, r, &sel) {
		return
	}
	if !sel.Query.Type.Valid() {
		writeError(w, http.StatusBadRequest, "query.type must be trade, supplier or product")
		return
	}
	if sel.Query.ID == "" {
		writeError(w, http.StatusBadRequest, "query.id is required")
		return
	}

	groups, err := s.backend.TradeGroups(sel)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleSupplierRanking(w http.ResponseWriter, r *http.Request) {
	recs, err := s.backend.SupplierTradePerformance()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleProductImpact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TradeID    string `json:"trade_id"`
		SupplierID string `json:"supplier_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.TradeID == "" || req.SupplierID == "" {
		writeError(w, http.StatusBadRequest, "trade_id and supplier_id are required")
		return
	}

	recs, err := s.backend.ProductPerformance(req.TradeID, req.SupplierID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error("registry request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	s.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindStoreError, Comp: "serve", Msg: r.URL.Path, Err: err.Error()})
	writeError(w, http.StatusInternalServerError, "internal error")
}

// observe records one serve.request event per request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := otel.LevelInfo
		if ww.Status() >= 500 {
			level = otel.LevelError
		}
		s.events.Emit(otel.Event{
			Level: level,
			Kind:  otel.KindServeReq,
			Comp:  "serve",
			Msg:   r.Method + " " + r.URL.Path,
			Code:  ww.Status(),
			Dur:   time.Since(start),
			Extra: map[string]any{"request_id": middleware.GetReqID(r.Context()), "bytes": ww.BytesWritten()},
		})
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
