// Package server exposes the procurement API. Every write endpoint validates
// its body with the reqshape middleware before the handler runs.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/internal/procurement"
	"github.com/reoring/reqshape/jsonschema"
	"github.com/reoring/reqshape/middleware"
	"github.com/reoring/reqshape/openapi"
)

// Handler serves the procurement API.
type Handler struct {
	validator *reqshape.Validator
	sink      Sink
	logger    *slog.Logger
	opts      middleware.Options
	spec      *openapi.Generator
}

// NewHandler wires a handler. A nil sink logs accepted requests.
func NewHandler(v *reqshape.Validator, sink Sink, logger *slog.Logger, opts middleware.Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	opts.Logger = logger
	return &Handler{
		validator: v,
		sink:      sink,
		logger:    logger,
		opts:      opts,
		spec:      openapi.NewGenerator(openapi.WithTitle("procurement API")),
	}
}

// Router builds the chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapiSpec)
	r.Get("/v1/shapes", h.listShapes)
	r.Get("/v1/shapes/{name}/schema", h.shapeSchema)

	r.With(h.validate(procurement.VendorShape)).Post("/v1/vendors", h.createVendor)
	r.With(h.validate(procurement.PurchaseOrderShape)).Post("/v1/purchase-orders", h.createPurchaseOrder)
	r.With(h.requireOrderID, h.validate(procurement.ApprovalDecisionShape)).
		Post("/v1/purchase-orders/{id}/approvals", h.createApproval)
	return r
}

func (h *Handler) validate(shape string) func(http.Handler) http.Handler {
	return middleware.Validate(h.validator, reqshape.Ref(shape), h.opts)
}

func (h *Handler) requireOrderID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusNotFound, "purchase order not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) openapiSpec(w http.ResponseWriter, r *http.Request) {
	doc, err := h.spec.Generate(h.validator.Registry())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) listShapes(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string][]string{"shapes": h.validator.Registry().Names()})
}

func (h *Handler) shapeSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := h.validator.Registry().Lookup(name); err != nil {
		writeError(w, http.StatusNotFound, "unknown shape")
		return
	}
	doc, err := jsonschema.FromShape(h.validator.Registry(), name, jsonschema.Options{
		Strict: h.validator.Config().ForbidNonWhitelisted,
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	body, err := jsonschema.Marshal(doc)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	obj, v, ok := accepted[procurement.Vendor](h, w, r)
	if !ok {
		return
	}
	if err := h.sink.SubmitVendor(r.Context(), v); err != nil {
		h.internalError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, obj)
}

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	obj, po, ok := accepted[procurement.PurchaseOrder](h, w, r)
	if !ok {
		return
	}
	if err := h.sink.SubmitPurchaseOrder(r.Context(), po); err != nil {
		h.internalError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]any{"order": obj, "totals": po.Totals()})
}

func (h *Handler) createApproval(w http.ResponseWriter, r *http.Request) {
	obj, d, ok := accepted[procurement.ApprovalDecision](h, w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.sink.RecordApproval(r.Context(), id, d); err != nil {
		h.internalError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusAccepted, map[string]any{"orderId": id, "approval": obj})
}

// accepted reads the instance stored by the validation middleware and
// converts it to the typed view.
func accepted[T any](h *Handler, w http.ResponseWriter, r *http.Request) (map[string]any, T, bool) {
	var zero T
	obj, ok := middleware.ObjectFromContext(r.Context())
	if !ok {
		h.internalError(w, r, errors.New("no validated instance in context"))
		return nil, zero, false
	}
	v, err := reqshape.Into[T](reqshape.Result{Value: obj})
	if err != nil {
		h.internalError(w, r, err)
		return nil, zero, false
	}
	return obj, v, true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"request_id", chimw.GetReqID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	middleware.WriteJSON(w, status, middleware.ErrorPayload{Message: msg})
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	http     *http.Server
	logger   *slog.Logger
	timeouts Timeouts
}

// New builds an http.Server around the handler.
func New(addr string, h *Handler, t Timeouts) *Server {
	return &Server{
		http: &http.Server{
			Addr:         addr,
			Handler:      h.Router(),
			ReadTimeout:  t.Read,
			WriteTimeout: t.Write,
		},
		logger:   h.logger,
		timeouts: t,
	}
}

// Run serves until ctx is cancelled, then shuts down within the configured
// grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("initiating graceful shutdown")
	}
	grace := s.timeouts.Shutdown
	if grace <= 0 {
		grace = defaultShutdown
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
