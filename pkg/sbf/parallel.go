package sbf

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LoadOptions controls batch loading behavior and error handling.
type LoadOptions struct {
	// Workers specifies the number of concurrent loader goroutines.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors causes loading to continue even when individual files
	// fail; failed slots stay nil and errors are collected. When false,
	// the first error cancels the batch and is returned alone.
	SkipErrors bool

	// Progress is an optional callback reporting (loaded, total) after
	// each file finishes, successfully or not.
	Progress func(loaded, total int)

	// ErrorLog is an optional writer receiving one line per failed file.
	ErrorLog io.Writer
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}

// LoadCloudsParallel loads multiple SBF files concurrently.
//
// The returned slice is aligned with paths; with SkipErrors set, failed
// slots are nil and the collected errors come back alongside. Each file is
// decoded by an independent worker: clouds share no state, so the only
// coordination is the work distribution itself.
//
// Example:
//
//	clouds, errs := sbf.LoadCloudsParallel(paths, sbf.LoadOptions{
//	    Workers:    8,
//	    SkipErrors: true,
//	    Progress: func(loaded, total int) {
//	        fmt.Printf("\r%d/%d", loaded, total)
//	    },
//	})
func LoadCloudsParallel(paths []string, opts LoadOptions) ([]*Cloud, []error) {
	clouds := make([]*Cloud, len(paths))
	if len(paths) == 0 {
		return clouds, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		errs   []error
		loaded int
	)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			c, err := Read(path)

			mu.Lock()
			loaded++
			done := loaded
			if err != nil {
				if opts.ErrorLog != nil {
					fmt.Fprintf(opts.ErrorLog, "load %s: %v\n", path, err)
				}
				if opts.SkipErrors {
					errs = append(errs, fmt.Errorf("load %s: %w", path, err))
				}
			} else {
				clouds[i] = c
			}
			progress := opts.Progress
			mu.Unlock()

			if progress != nil {
				progress(done, len(paths))
			}
			if err != nil && !opts.SkipErrors {
				return fmt.Errorf("load %s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return clouds, []error{err}
	}
	return clouds, errs
}
