// Package api exposes the fitting service over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"transientfit/app"
	"transientfit/domain/core"
	"transientfit/domain/model"
	"transientfit/domain/prior"
	"transientfit/domain/transient"
	"transientfit/internal"
	"transientfit/internal/errors"
	"transientfit/ports"
)

// Server routes fit and result requests to the fit service
type Server struct {
	router   *chi.Mux
	service  *app.FitService
	registry *model.Registry
	store    ports.ResultStore
	log      *internal.Logger
}

// NewServer creates the HTTP server and registers its routes
func NewServer(service *app.FitService, registry *model.Registry, store ports.ResultStore) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		registry: registry,
		store:    store,
		log:      internal.DefaultLogger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/models", s.handleListModels)
	s.router.Get("/api/runs", s.handleListRuns)
	s.router.Get("/api/runs/{id}", s.handleGetRun)
	s.router.Post("/api/fit", s.handleFit)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	out := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		m, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		out = append(out, map[string]interface{}{
			"name":        m.Name,
			"description": m.Description,
			"parameters":  m.Params,
		})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, errors.ConfigInvalid("no result store configured"))
		return
	}
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			limit = n
		}
	}
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, errors.ConfigInvalid("no result store configured"))
		return
	}
	id := core.FitID(chi.URLParam(r, "id"))
	rec, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, rec)
}

// fitPayload is the POST /api/fit request body.
type fitPayload struct {
	Name       string `json:"name"`
	SourceType string `json:"source_type"`
	Model      string `json:"model"`
	DataMode   string `json:"data_mode"`

	Time    []float64 `json:"time"`
	Y       []float64 `json:"y"`
	YErr    []float64 `json:"y_err,omitempty"`
	BinSize float64   `json:"bin_size,omitempty"`

	Redshift    float64 `json:"redshift,omitempty"`
	PhotonIndex float64 `json:"photon_index,omitempty"`

	Priors              map[string]prior.Prior `json:"priors"`
	ModelKwargs         map[string]interface{} `json:"model_kwargs,omitempty"`
	UsePhotonIndexPrior bool                   `json:"use_photon_index_prior,omitempty"`

	NLive int   `json:"nlive,omitempty"`
	Walks int   `json:"walks,omitempty"`
	Seed  int64 `json:"seed,omitempty"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var payload fitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}

	mode, err := transient.ParseDataMode(payload.DataMode)
	if err != nil {
		s.respondError(w, err)
		return
	}
	tr, err := buildTransient(payload, mode)
	if err != nil {
		s.respondError(w, err)
		return
	}

	req := app.FitRequest{
		Name:                payload.Name,
		SourceType:          payload.SourceType,
		Model:               payload.Model,
		Transient:           tr,
		Priors:              prior.Dict(payload.Priors),
		ModelKwargs:         model.Kwargs(payload.ModelKwargs),
		UsePhotonIndexPrior: payload.UsePhotonIndexPrior,
		NLive:               payload.NLive,
		Walks:               payload.Walks,
		Seed:                payload.Seed,
	}
	result, err := s.service.Fit(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func buildTransient(payload fitPayload, mode transient.DataMode) (*transient.Transient, error) {
	spec := transient.Spec{
		Name:        payload.Name,
		Mode:        mode,
		Time:        payload.Time,
		BinSize:     payload.BinSize,
		Redshift:    payload.Redshift,
		PhotonIndex: payload.PhotonIndex,
	}
	switch mode {
	case transient.ModeLuminosity:
		spec.TimeRestFrame = payload.Time
		spec.Time = nil
		spec.Lum50 = payload.Y
		spec.Lum50Err = payload.YErr
	case transient.ModeFlux:
		spec.Flux = payload.Y
		spec.FluxErr = payload.YErr
	case transient.ModeFluxDensity:
		spec.FluxDensity = payload.Y
		spec.FluxDensityErr = payload.YErr
	case transient.ModePhotometry:
		spec.Magnitude = payload.Y
		spec.MagnitudeErr = payload.YErr
	case transient.ModeCounts:
		spec.Counts = payload.Y
	case transient.ModeTTE:
		spec.TTEs = payload.Time
		spec.Time = nil
	}
	return transient.New(spec)
}

func (s *Server) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encoding response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeConfigInvalid, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	s.respond(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
