package shelving

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultCapacity is the shelf weight limit and danger threshold.
	DefaultCapacity = 8.0
	// DefaultMaxPerShelf bounds the items on one shelf.
	DefaultMaxPerShelf = 4
	// DefaultNodeBudget bounds the search nodes visited by a single call.
	DefaultNodeBudget int64 = 50_000_000
	// DefaultMaxTraceSteps bounds the recorded exploration of BestShelf.
	DefaultMaxTraceSteps = 2000

	tracerName = "github.com/eugenenazirov/shelf-planner/internal/shelving"
)

// Search operations reported to the Observer.
const (
	OperationDangerousGroups = "dangerous_groups"
	OperationBestShelf       = "best_shelf"
	OperationShelves         = "shelves"
)

// Search outcomes reported to the Observer.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeRejected  = "rejected"
)

type planner struct {
	capacity      float64
	maxPerShelf   int
	nodeBudget    int64
	maxTraceSteps int
	tracer        trace.Tracer
	observer      Observer
}

// Option configures a Planner.
type Option func(*planner)

// WithCapacity sets the shelf weight limit, also used as the danger threshold.
func WithCapacity(capacity float64) Option {
	return func(p *planner) {
		p.capacity = capacity
	}
}

// WithMaxPerShelf sets the maximum number of items on one shelf.
func WithMaxPerShelf(n int) Option {
	return func(p *planner) {
		p.maxPerShelf = n
	}
}

// WithNodeBudget bounds the nodes a single call may visit. Zero disables the budget.
func WithNodeBudget(nodes int64) Option {
	return func(p *planner) {
		p.nodeBudget = nodes
	}
}

// WithMaxTraceSteps bounds how many states BestShelf records when tracing.
func WithMaxTraceSteps(n int) Option {
	return func(p *planner) {
		p.maxTraceSteps = n
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *planner) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithObserver registers a receiver for per-search measurements.
func WithObserver(observer Observer) Option {
	return func(p *planner) {
		p.observer = observer
	}
}

// New creates a Planner. It fails when the capacity or the per-shelf limit is invalid.
func New(opts ...Option) (Planner, error) {
	p := &planner{
		capacity:      DefaultCapacity,
		maxPerShelf:   DefaultMaxPerShelf,
		nodeBudget:    DefaultNodeBudget,
		maxTraceSteps: DefaultMaxTraceSteps,
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if err := ValidateLimits(p.capacity, p.maxPerShelf); err != nil {
		return nil, err
	}
	if p.nodeBudget < 0 {
		p.nodeBudget = 0
	}
	if p.maxTraceSteps < 0 {
		p.maxTraceSteps = 0
	}
	return p, nil
}

// ValidateLimits checks a capacity and per-shelf limit pair.
func ValidateLimits(capacity float64, maxPerShelf int) error {
	if math.IsNaN(capacity) || math.IsInf(capacity, 0) || capacity <= 0 {
		return ErrInvalidCapacity
	}
	if maxPerShelf <= 0 {
		return ErrInvalidMaxPerShelf
	}
	return nil
}

// ValidateItems rejects items with negative or non-finite weights or values.
func ValidateItems(items []Item) error {
	for _, item := range items {
		if !validAmount(item.Weight) || !validAmount(item.Value) {
			return fmt.Errorf("%w: item %q", ErrInvalidItem, item.ID)
		}
	}
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func (p *planner) Capacity() float64 {
	return p.capacity
}

func (p *planner) MaxPerShelf() int {
	return p.maxPerShelf
}

func (p *planner) DangerousGroups(ctx context.Context, items []Item) (DangerReport, error) {
	ctx, span := p.startSpan(ctx, OperationDangerousGroups, len(items))
	defer span.End()
	start := time.Now()

	if len(items) < GroupSize {
		p.finish(span, OperationDangerousGroups, start, nil, ErrTooFewItems)
		return DangerReport{}, ErrTooFewItems
	}

	guard, err := p.begin(ctx, items)
	if err != nil {
		p.finish(span, OperationDangerousGroups, start, guard, err)
		return DangerReport{}, err
	}

	groups, examined, err := findDangerousGroups(items, p.capacity, guard)
	p.finish(span, OperationDangerousGroups, start, guard, err)
	if err != nil {
		return DangerReport{}, err
	}

	span.SetAttributes(
		attribute.Int("shelving.examined", examined),
		attribute.Int("shelving.groups", len(groups)),
	)
	return DangerReport{Groups: groups, Examined: examined}, nil
}

func (p *planner) BestShelf(ctx context.Context, items []Item, withTrace bool) (Selection, []TraceStep, error) {
	ctx, span := p.startSpan(ctx, OperationBestShelf, len(items))
	defer span.End()
	start := time.Now()

	guard, err := p.begin(ctx, items)
	if err != nil {
		p.finish(span, OperationBestShelf, start, guard, err)
		return Selection{}, nil, err
	}

	var recorder *traceRecorder
	if withTrace {
		recorder = newTraceRecorder(p.maxTraceSteps)
	}

	selection, _, err := optimize(items, p.capacity, p.maxPerShelf, guard, recorder)
	p.finish(span, OperationBestShelf, start, guard, err)
	if err != nil {
		return Selection{}, nil, err
	}

	span.SetAttributes(attribute.Float64("shelving.best_value", selection.Value))
	if recorder == nil {
		return selection, nil, nil
	}
	if recorder.truncated {
		span.SetAttributes(attribute.Bool("shelving.trace_truncated", true))
	}
	return selection, recorder.steps, nil
}

func (p *planner) Shelves(ctx context.Context, items []Item) (ShelfPlan, error) {
	ctx, span := p.startSpan(ctx, OperationShelves, len(items))
	defer span.End()
	start := time.Now()

	guard, err := p.begin(ctx, items)
	if err != nil {
		p.finish(span, OperationShelves, start, guard, err)
		return ShelfPlan{}, err
	}

	plan, err := packShelves(items, p.capacity, p.maxPerShelf, guard)
	p.finish(span, OperationShelves, start, guard, err)
	if err != nil {
		return ShelfPlan{}, err
	}

	span.SetAttributes(
		attribute.Int("shelving.shelves", len(plan.Shelves)),
		attribute.Int("shelving.unassigned", len(plan.Unassigned)),
	)
	return plan, nil
}

// begin validates the input and refuses to start on an already cancelled context.
func (p *planner) begin(ctx context.Context, items []Item) (*searchGuard, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchAborted, err)
	}
	return newSearchGuard(ctx, p.nodeBudget), nil
}

func (p *planner) startSpan(ctx context.Context, operation string, items int) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "shelving."+operation, trace.WithAttributes(
		attribute.Int("shelving.items", items),
		attribute.Float64("shelving.capacity", p.capacity),
		attribute.Int("shelving.max_per_shelf", p.maxPerShelf),
	))
}

func (p *planner) finish(span trace.Span, operation string, start time.Time, guard *searchGuard, err error) {
	outcome := OutcomeCompleted
	switch {
	case err == nil:
	case errors.Is(err, ErrSearchAborted):
		outcome = OutcomeAborted
	default:
		outcome = OutcomeRejected
	}

	nodes := guard.visited()
	span.SetAttributes(
		attribute.Int64("shelving.nodes", nodes),
		attribute.String("shelving.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if p.observer != nil {
		p.observer.ObserveSearch(operation, outcome, time.Since(start).Seconds(), nodes)
	}
}
