package summarize

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// BatchOptions tunes concurrent batch summarization.
type BatchOptions struct {
	Options

	// Workers is the number of concurrent summarizations. Zero means 1.
	Workers int

	// RateLimitRPS caps request starts per second across all workers.
	// Zero means unlimited.
	RateLimitRPS float64

	// OnDone, when set, is called after each file finishes, in completion
	// order.
	OnDone func(BatchResult)
}

// BatchResult pairs one input file with its outcome. A failed file carries
// its error and never aborts the rest of the batch.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// Batch summarizes every file concurrently and returns results in input
// order. Only context cancellation stops the batch early.
func (s *Summarizer) Batch(ctx context.Context, files []string, opt BatchOptions) []BatchResult {
	workers := opt.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	var limiter *rate.Limiter
	if opt.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opt.RateLimitRPS), 1)
	}

	out := make([]BatchResult, len(files))
	for i := range out {
		out[i].Index = i
	}
	jobs := make(chan int)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				br := BatchResult{Index: i}
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						br.Err = err
						out[i] = br
						continue
					}
				}
				br.Result, br.Err = s.File(ctx, files[i], opt.Options)
				out[i] = br
				if opt.OnDone != nil {
					mu.Lock()
					opt.OnDone(br)
					mu.Unlock()
				}
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			for j := range out {
				if out[j].Result == nil && out[j].Err == nil {
					out[j].Err = ctx.Err()
				}
			}
			return out
		}
	}
	close(jobs)
	wg.Wait()
	return out
}
