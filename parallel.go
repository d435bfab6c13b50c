package sealbox

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig controls the batch file codec worker pool
type ParallelConfig struct {
	// Enabled enables parallel processing
	Enabled bool

	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinJobsForParallel is the minimum batch size to use parallel processing
	// Below this threshold, sequential processing is used
	// Defaults to 2
	MinJobsForParallel int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if !p.Enabled {
		return nil
	}

	if p.MaxWorkers < 0 {
		return NewValidationError("parallel.max_workers", p.MaxWorkers, "cannot be negative")
	}
	if p.MaxWorkers > 1024 {
		return NewValidationError("parallel.max_workers", p.MaxWorkers, "must not exceed 1024")
	}
	if p.MinJobsForParallel < 1 {
		return NewValidationError("parallel.min_jobs", p.MinJobsForParallel, "must be at least 1")
	}

	return nil
}

// DefaultParallelConfig returns the default parallel processing configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Enabled:            true,
		MaxWorkers:         runtime.NumCPU(),
		MinJobsForParallel: 2,
	}
}

// EncryptFiles seals every file under password. Results are in input order.
// The first failure aborts the batch.
func (s *Sealer) EncryptFiles(ctx context.Context, files []File, password string) ([]string, error) {
	out := make([]string, len(files))
	err := s.runJobs(ctx, len(files), func(i int) error {
		envelope, err := s.encryptFile(&files[i], password)
		if err != nil {
			return fmt.Errorf("file %d (%s): %w", i, files[i].Name, err)
		}
		out[i] = envelope
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptFiles opens every file envelope under password. Results are in
// input order. The first failure aborts the batch.
func (s *Sealer) DecryptFiles(ctx context.Context, envelopes []string, password string) ([]*File, error) {
	out := make([]*File, len(envelopes))
	err := s.runJobs(ctx, len(envelopes), func(i int) error {
		f, err := s.DecryptFile(ctx, envelopes[i], password, "")
		if err != nil {
			return fmt.Errorf("envelope %d: %w", i, err)
		}
		out[i] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// runJobs calls job for 0..n-1, on a bounded pool of workers when the batch
// is large enough. Panics in a job are returned as errors.
func (s *Sealer) runJobs(ctx context.Context, n int, job func(int) error) error {
	if n == 0 {
		return nil
	}

	cfg := s.config.Parallel
	numWorkers := cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > n {
		numWorkers = n
	}

	if !cfg.Enabled || n < cfg.MinJobsForParallel || numWorkers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := safeJob(job, i); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	jobChan := make(chan int)
	errChan := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := safeJob(job, idx); err != nil {
					select {
					case errChan <- err:
					default:
					}
					cancel()
					return
				}
			}
		}()
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case jobChan <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return err
	}
	return ctx.Err()
}

func safeJob(job func(int) error, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in worker: %v", r)
		}
	}()
	return job(i)
}
