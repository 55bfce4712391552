package audit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PageScanner audits a single URL.
type PageScanner interface {
	Scan(ctx context.Context, rawURL string) (*Report, error)
}

// Result is the outcome of one URL in a batch.
type Result struct {
	URL      string        `json:"url" yaml:"url"`
	Report   *Report       `json:"report,omitempty" yaml:"report,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"durationNs" yaml:"durationNs"`
}

// ResultFunc is called once per finished URL, from the worker goroutine.
type ResultFunc func(index int, result Result)

// Runner orchestrates the execution of scans with concurrency and rate limiting
type Runner struct {
	Concurrency int           // Maximum number of concurrent scans
	RateLimit   int           // Scans started per second (global)
	Timeout     time.Duration // Timeout for each scan
}

// Run scans every URL using a worker pool. Results keep the order of urls.
func (r *Runner) Run(ctx context.Context, urls []string, scanner PageScanner, onResult ResultFunc) []Result {
	concurrency := max(r.Concurrency, 1)
	limit := rate.Inf
	burst := 1
	if r.RateLimit > 0 {
		limit = rate.Limit(r.RateLimit)
		burst = r.RateLimit
	}
	limiter := rate.NewLimiter(limit, burst)

	// Worker pool
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, len(urls))

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			res := Result{URL: u}
			if err := limiter.Wait(ctx); err != nil {
				res.Error = err.Error()
				results[i] = res
				if onResult != nil {
					onResult(i, res)
				}
				return
			}

			scanCtx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				scanCtx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			start := time.Now()
			report, err := scanner.Scan(scanCtx, u)
			res.Duration = time.Since(start)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Report = report
			}

			results[i] = res
			if onResult != nil {
				onResult(i, res)
			}
		}(i, u)
	}

	wg.Wait()
	return results
}
