package flow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/output"
	"github.com/subhasish12345/SHOPSAGE/internal/prompt"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// Observer is notified after every invocation.
type Observer interface {
	Observe(name string, res Result)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(name string, res Result)

// Observe calls f(name, res).
func (f ObserverFunc) Observe(name string, res Result) { f(name, res) }

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for stage and outcome events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// Runner executes registered flows against a model.
type Runner struct {
	registry  *Registry
	invoker   model.Invoker
	logger    *zap.Logger
	observers []Observer
}

// NewRunner creates a runner over reg that calls inv.
func NewRunner(reg *Registry, inv model.Invoker, opts ...Option) *Runner {
	r := &Runner{
		registry: reg,
		invoker:  inv,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the runner reads from.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Invoke runs the named flow on raw input. It never panics and never
// returns a partially populated output: the Result is a Success holding an
// output that satisfies the flow's output schema, or a Failure.
func (r *Runner) Invoke(ctx context.Context, name string, raw any) Result {
	start := time.Now()
	res := r.invoke(ctx, name, raw)
	res.Meta.Duration = time.Since(start)

	if d := res.Err(); d != nil {
		r.stage(name, StageFailed)
		r.logger.Warn("flow failed",
			zap.String("flow", name),
			zap.String("kind", string(d.Kind)),
			zap.String("stage", string(d.Stage)),
			zap.Duration("duration", res.Meta.Duration),
			zap.String("error", d.Message))
	} else {
		r.logger.Info("flow succeeded",
			zap.String("flow", name),
			zap.String("model", res.Meta.Usage.Model),
			zap.Duration("duration", res.Meta.Duration))
	}
	for _, o := range r.observers {
		o.Observe(name, res)
	}
	return res
}

// Prepare validates raw input and renders the prompt without calling the
// model. It backs dry runs.
func (r *Runner) Prepare(name string, raw any) (model.Request, *ErrorDetail) {
	e, err := r.registry.lookup(name)
	if err != nil {
		return model.Request{}, notFound(name, err)
	}
	return r.prepare(e, name, raw)
}

func (r *Runner) prepare(e entry, name string, raw any) (model.Request, *ErrorDetail) {
	r.stage(name, StageValidating)
	input, errs := schema.Validate(e.def.Input, raw)
	if errs != nil {
		return model.Request{}, invalidInput(name, errs)
	}

	r.stage(name, StagePrompting)
	req, err := prompt.Render(e.tmpl, input, e.def.Output)
	if err != nil {
		return model.Request{}, renderFailed(name, err)
	}
	return req, nil
}

func (r *Runner) invoke(ctx context.Context, name string, raw any) Result {
	e, err := r.registry.lookup(name)
	if err != nil {
		return Failure(notFound(name, err))
	}

	req, detail := r.prepare(e, name, raw)
	if detail != nil {
		return Failure(detail)
	}

	r.stage(name, StageInvoking)
	resp, err := r.call(ctx, req)
	if err != nil {
		return Failure(invocationFailed(name, model.Classify("", err)))
	}

	r.stage(name, StageParsingOutput)
	out, errs := output.Parse(e.def.Output, resp)
	if errs != nil {
		res := Failure(invalidOutput(name, errs))
		res.Meta.Usage = resp.Usage
		return res
	}

	r.stage(name, StageDone)
	res := Success(out)
	res.Meta.Usage = resp.Usage
	return res
}

type callResult struct {
	resp *model.Response
	err  error
}

// call runs the model request in its own goroutine and waits for either the
// reply or the end of ctx. A reply that lands after ctx ends is discarded.
// The channel is buffered so an abandoned call can still finish and exit.
func (r *Runner) call(ctx context.Context, req model.Request) (*model.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- callResult{err: model.NewFatal(model.ReasonUnknown, fmt.Sprintf("invoker panicked: %v", p))}
			}
		}()
		resp, err := r.invoker.Invoke(ctx, req)
		done <- callResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.err == nil && res.resp == nil {
			return nil, model.NewFatal(model.ReasonUnknown, "invoker returned no response")
		}
		return res.resp, res.err
	}
}

func (r *Runner) stage(name string, s Stage) {
	r.logger.Debug("flow stage",
		zap.String("flow", name),
		zap.String("stage", string(s)),
		zap.Bool("terminal", s.Terminal()))
}
