// Package fanout runs independent fetches over a bounded worker pool and
// waits for every one of them to settle.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

const defaultWorkers = 8

// ErrJoin is returned by Strict when at least one fetch failed.
var ErrJoin = errors.New("fan-out join failed")

// Result is the settled outcome of one input. Index is the input position.
type Result[In, Out any] struct {
	Index int
	Input In
	Value Out
	Err   error
}

// Failed reports whether the fetch returned an error.
func (r Result[In, Out]) Failed() bool { return r.Err != nil }

type options struct {
	workers int
	log     logger.Logger
	name    string
}

// Option configures Run.
type Option func(*options)

// WithWorkers bounds the number of concurrent fetches.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger used for failure reports.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithName labels log lines, e.g. "details".
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// Run calls fetch for every input and returns one Result per input in
// input order. It returns only after every fetch has settled. Inputs not
// started before ctx is done settle with ctx.Err().
func Run[In, Out any](ctx context.Context, inputs []In, fetch func(context.Context, In) (Out, error), opts ...Option) []Result[In, Out] {
	o := options{workers: defaultWorkers, name: "fanout"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get()
	}
	log := o.log.Named(o.name)

	start := time.Now()
	results := make([]Result[In, Out], len(inputs))
	jobs := make(chan int, o.workers*2)
	var wg sync.WaitGroup

	for w := 0; w < min(o.workers, len(inputs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r := Result[In, Out]{Index: i, Input: inputs[i]}
				if err := ctx.Err(); err != nil {
					r.Err = err
				} else {
					r.Value, r.Err = safeFetch(ctx, fetch, inputs[i])
				}
				results[i] = r
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failures := 0
	for _, r := range results {
		if r.Failed() {
			failures++
			log.Warn(ctx, "fetch failed", logger.Int("index", r.Index), logger.Error(r.Err))
		}
	}
	metrics.RecordFanout(failures, float64(time.Since(start).Microseconds())/1000)
	log.Debug(ctx, "fan-out settled",
		logger.Int("inputs", len(inputs)),
		logger.Int("failures", failures),
		logger.Duration("took", time.Since(start)))
	return results
}

func safeFetch[In, Out any](ctx context.Context, fetch func(context.Context, In) (Out, error), in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fetch(ctx, in)
}

// Partial splits results into successful values and failures, both in input order.
func Partial[In, Out any](results []Result[In, Out]) ([]Out, []Result[In, Out]) {
	values := make([]Out, 0, len(results))
	var failed []Result[In, Out]
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
			continue
		}
		values = append(values, r.Value)
	}
	return values, failed
}

// Strict returns every value, or ErrJoin wrapping all failures if any fetch failed.
func Strict[In, Out any](results []Result[In, Out]) ([]Out, error) {
	values, failed := Partial(results)
	if len(failed) == 0 {
		return values, nil
	}
	errs := make([]error, 0, len(failed)+1)
	errs = append(errs, fmt.Errorf("%w: %d of %d failed", ErrJoin, len(failed), len(results)))
	for _, f := range failed {
		errs = append(errs, f.Err)
	}
	return nil, errors.Join(errs...)
}
