// Package orchestrator runs the question answering pipeline end to end.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/llm"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/prompt"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/retriever"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/sources"
)

// DefaultSourceTimeout bounds each optional source in multi-source mode.
const DefaultSourceTimeout = 10 * time.Second

// Orchestrator wires retrieval, prompt assembly, and answering into one Ask
// call, with optional fan-out to extra sources.
type Orchestrator struct {
	retriever     *retriever.Retriever
	assembler     *prompt.Assembler
	client        *llm.Client
	extra         []sources.Source
	sourceTimeout time.Duration
	logger        *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSources registers the optional sources consulted in multi-source mode.
func WithSources(srcs ...sources.Source) Option {
	return func(o *Orchestrator) { o.extra = append(o.extra, srcs...) }
}

// WithSourceTimeout bounds each optional source call.
func WithSourceTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.sourceTimeout = d
		}
	}
}

// WithLogger sets a logger for pipeline events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator over the pipeline components.
func New(r *retriever.Retriever, a *prompt.Assembler, c *llm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		retriever:     r,
		assembler:     a,
		client:        c,
		sourceTimeout: DefaultSourceTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ask answers a question from the knowledge base. Provider breakage surfaces
// as a degraded answer, not an error; the only error cases are an invalid
// query and retrieval finding nothing usable with no alternate source to
// fall back on. With q.MultiSource set, the extra sources are consulted
// concurrently and their results attached; a failed source is dropped
// without affecting the rest.
func (o *Orchestrator) Ask(ctx context.Context, q *models.Query) (*models.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	chunks, err := o.retriever.Retrieve(ctx, q)
	if err != nil {
		var unavailable *retriever.UnavailableError
		if errors.As(err, &unavailable) && q.MultiSource && len(o.extra) > 0 {
			return o.sourcesOnlyAnswer(ctx, q, unavailable), nil
		}
		return nil, err
	}

	p := o.assembler.Assemble(q.Question, chunks)
	answer := o.client.Answer(ctx, q.Question, p)

	if o.logger != nil {
		o.logger.Info("question answered",
			zap.String("category", q.Category),
			zap.Int("chunks", len(p.Included)),
			zap.String("mode", string(answer.Mode)))
	}

	if q.MultiSource && len(o.extra) > 0 {
		answer.Sources = o.consultSources(ctx, q.Question)
	}
	return answer, nil
}

// sourcesOnlyAnswer answers from the extra sources alone when retrieval has
// nothing usable. The result carries no document citations and is always
// degraded overall, even when individual sources answered live.
func (o *Orchestrator) sourcesOnlyAnswer(ctx context.Context, q *models.Query, unavailable *retriever.UnavailableError) *models.Answer {
	if o.logger != nil {
		o.logger.Warn("retrieval unavailable, consulting sources only",
			zap.String("reason", unavailable.Reason))
	}
	return &models.Answer{
		Answer:  fmt.Sprintf("No answer from the knowledge base (%s). Answers from other sources follow.", unavailable.Reason),
		Mode:    models.ModeDegraded,
		Sources: o.consultSources(ctx, q.Question),
	}
}

// consultSources fans out to every registered source with a per-source
// timeout and merges whatever succeeded, in registration order.
func (o *Orchestrator) consultSources(ctx context.Context, question string) []models.SourceAnswer {
	results := make([]*models.SourceAnswer, len(o.extra))
	var wg sync.WaitGroup

	for i, src := range o.extra {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, o.sourceTimeout)
			defer cancel()

			ans, err := src.Answer(sctx, question)
			if err != nil {
				if o.logger != nil {
					o.logger.Warn("source failed", zap.String("source", src.Name()), zap.Error(err))
				}
				return
			}
			results[i] = ans
		}(i, src)
	}
	wg.Wait()

	merged := make([]models.SourceAnswer, 0, len(results))
	for _, r := range results {
		if r != nil {
			merged = append(merged, *r)
		}
	}
	return merged
}
