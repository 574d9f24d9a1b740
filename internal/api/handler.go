package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/shelf-planner/internal/cache"
	"github.com/eugenenazirov/shelf-planner/internal/metrics"
	"github.com/eugenenazirov/shelf-planner/internal/shelving"
	"github.com/eugenenazirov/shelf-planner/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the planner, catalog and cache into HTTP handlers.
type Handler struct {
	planner shelving.Planner
	catalog storage.Catalog
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *zap.Logger

	searchTimeout time.Duration
	clock         func() time.Time
	newPlanID     func() string

	mu               sync.RWMutex
	catalogUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithCache enables result caching.
func WithCache(c cache.Cache) HandlerOption {
	return func(h *Handler) {
		h.cache = c
	}
}

// WithMetrics records cache lookups.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithHandlerLogger sets the logger used for non-fatal failures such as cache errors.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithSearchTimeout bounds each search. Zero leaves only the request context.
func WithSearchTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.searchTimeout = d
	}
}

// WithPlanIDGenerator overrides plan identifiers, primarily for tests.
func WithPlanIDGenerator(gen func() string) HandlerOption {
	return func(h *Handler) {
		h.newPlanID = gen
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(planner shelving.Planner, catalog storage.Catalog, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner: planner,
		catalog: catalog,
		logger:  zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newPlanID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.catalogUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := catalogResponse{
		Items:     toItemResponses(items),
		UpdatedAt: h.currentCatalogUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.Items == nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog", "items must be provided")
		return
	}

	items := make([]shelving.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = shelving.Item{ID: it.ID, Title: it.Title, Weight: it.Weight, Value: it.Value}
	}

	if err := h.catalog.Replace(r.Context(), items); err != nil {
		if errors.Is(err, storage.ErrInvalidItems) {
			writeError(w, http.StatusBadRequest, "Invalid catalog", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markCatalogUpdated()

	stored, err := h.catalog.Items(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := catalogResponse{
		Items:     toItemResponses(stored),
		UpdatedAt: h.currentCatalogUpdatedAt(),
		Message:   "Catalog updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDangerous(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	resp, err := h.dangerous(ctx, items)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleOptimal(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	resp, err := h.shelves(ctx, items)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleBest(w http.ResponseWriter, r *http.Request) {
	withTrace := false
	if raw := r.URL.Query().Get("trace"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", "trace must be a boolean")
			return
		}
		withTrace = parsed
	}

	items, err := h.catalog.Items(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	operation := shelving.OperationBestShelf
	if withTrace {
		operation += "_traced"
	}
	resp, err := cached(ctx, h, operation, items, func(ctx context.Context) (bestResponse, error) {
		selection, steps, err := h.planner.BestShelf(ctx, items, withTrace)
		if err != nil {
			return bestResponse{}, err
		}
		return newBestResponse(selection, steps), nil
	})
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	var resp reportResponse
	g, gctx := errgroup.WithContext(ctx)
	if len(items) >= shelving.GroupSize {
		g.Go(func() error {
			dangerous, err := h.dangerous(gctx, items)
			if err != nil {
				return err
			}
			resp.Dangerous = &dangerous
			return nil
		})
	}
	g.Go(func() error {
		shelves, err := h.shelves(gctx, items)
		if err != nil {
			return err
		}
		resp.Shelves = &shelves
		return nil
	})

	if err := g.Wait(); err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) dangerous(ctx context.Context, items []shelving.Item) (dangerousResponse, error) {
	return cached(ctx, h, shelving.OperationDangerousGroups, items, func(ctx context.Context) (dangerousResponse, error) {
		report, err := h.planner.DangerousGroups(ctx, items)
		if err != nil {
			return dangerousResponse{}, err
		}
		return newDangerousResponse(h.planner.Capacity(), report), nil
	})
}

func (h *Handler) shelves(ctx context.Context, items []shelving.Item) (shelvesResponse, error) {
	start := time.Now()
	resp, err := cached(ctx, h, shelving.OperationShelves, items, func(ctx context.Context) (shelvesResponse, error) {
		plan, err := h.planner.Shelves(ctx, items)
		if err != nil {
			return shelvesResponse{}, err
		}
		return newShelvesResponse(h.planner.Capacity(), h.planner.MaxPerShelf(), plan), nil
	})
	if err != nil {
		return shelvesResponse{}, err
	}
	resp.PlanID = h.newPlanID()
	resp.CalculationTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

// cached serves compute's result from the cache when possible. Cache failures
// are logged and never fail the request.
func cached[T any](ctx context.Context, h *Handler, operation string, items []shelving.Item, compute func(context.Context) (T, error)) (T, error) {
	if h.cache == nil {
		return compute(ctx)
	}

	key := cache.Key(operation, h.planner.Capacity(), h.planner.MaxPerShelf(), items)

	var hit T
	ok, err := h.cache.Get(ctx, key, &hit)
	switch {
	case err != nil:
		h.metrics.IncrementCacheLookup("error")
		h.logger.Warn("cache lookup failed", zap.String("operation", operation), zap.Error(err))
	case ok:
		h.metrics.IncrementCacheLookup("hit")
		return hit, nil
	default:
		h.metrics.IncrementCacheLookup("miss")
	}

	result, err := compute(ctx)
	if err != nil {
		return result, err
	}
	if err := h.cache.Set(ctx, key, result); err != nil {
		h.logger.Warn("cache store failed", zap.String("operation", operation), zap.Error(err))
	}
	return result, nil
}

func (h *Handler) searchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.searchTimeout > 0 {
		return context.WithTimeout(parent, h.searchTimeout)
	}
	return context.WithCancel(parent)
}

func (h *Handler) currentCatalogUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalogUpdatedAt
}

func (h *Handler) markCatalogUpdated() {
	h.mu.Lock()
	h.catalogUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shelving.ErrTooFewItems):
		writeError(w, http.StatusBadRequest, "Invalid catalog", err.Error(), "Add at least four items to the catalog")
	case errors.Is(err, shelving.ErrInvalidItem):
		writeError(w, http.StatusUnprocessableEntity, "Invalid catalog", err.Error())
	case errors.Is(err, shelving.ErrSearchAborted):
		writeError(w, http.StatusServiceUnavailable, "Search aborted", err.Error(), "Reduce the catalog size or raise the search budget")
	default:
		writeInternalError(w, err)
	}
}
