// Package batch runs one operation over many targets and reports one outcome
// per target in request order.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/acms/internal/domain"
)

// DefaultConcurrency is used when no positive limit is configured.
const DefaultConcurrency = 8

const tracerName = "github.com/bnema/acms/internal/usecase/batch"

// Op is applied to a single target. Its error decides the target outcome.
type Op func(ctx context.Context, target string) error

// Executor fans an operation out over targets with bounded concurrency.
type Executor struct {
	limit  int
	tracer trace.Tracer
}

// NewExecutor creates an executor running at most limit targets at once.
func NewExecutor(limit int) *Executor {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Executor{
		limit:  limit,
		tracer: otel.Tracer(tracerName),
	}
}

// Run applies op to every target. It never stops early: each target gets
// exactly one entry, at the same index it had in targets.
func (e *Executor) Run(ctx context.Context, operation string, targets []string, op Op) domain.BatchResult {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "batch",
		zerowrap.FieldAction:  operation,
		zerowrap.FieldCount:   len(targets),
	})
	log := zerowrap.FromCtx(ctx)
	start := time.Now()

	entries := make([]domain.BatchEntry, len(targets))

	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, target := range targets {
		g.Go(func() error {
			entries[i] = e.runOne(ctx, operation, target, op)
			return nil
		})
	}
	_ = g.Wait()

	result := domain.BatchResult{Entries: entries}
	log.Info().
		Int("succeeded", result.Succeeded()).
		Int("failed", result.Failed()).
		Dur(zerowrap.FieldDuration, time.Since(start)).
		Msg("batch completed")
	return result
}

func (e *Executor) runOne(ctx context.Context, operation, target string, op Op) (entry domain.BatchEntry) {
	ctx, span := e.tracer.Start(ctx, "batch."+operation, trace.WithAttributes(
		attribute.String("acms.operation", operation),
		attribute.String("acms.target", target),
	))
	defer span.End()

	entry.Target = target
	defer func() {
		if r := recover(); r != nil {
			entry.Outcome = domain.OutcomeError
			entry.Detail = fmt.Sprintf("panic: %v", r)
			span.SetStatus(codes.Error, entry.Detail)
			log := zerowrap.FromCtx(ctx)
			log.Error().Str(zerowrap.FieldEntityID, target).Interface("panic", r).Msg("batch operation panicked")
		}
	}()

	err := op(ctx, target)
	entry.Outcome = domain.OutcomeFor(err)
	if err != nil {
		entry.Detail = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(entry.Outcome))
		log := zerowrap.FromCtx(ctx)
		log.Debug().Err(err).Str(zerowrap.FieldEntityID, target).Str("outcome", string(entry.Outcome)).Msg("batch target failed")
	}
	span.SetAttributes(attribute.String("acms.outcome", string(entry.Outcome)))
	return entry
}
