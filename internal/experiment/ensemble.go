package experiment

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ensemble runs jobs 0..n-1 on at most workers goroutines. Each job owns
// its own simulator and writes only its own result slot. It returns the
// lowest index that did not finish, or n. A failure cancels the jobs still
// running or waiting, and the error returned is the one that caused it.
func ensemble(parent context.Context, n, workers int, job func(ctx context.Context, i int) error) (int, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	errs := make([]error, n)
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			if errs[idx] = job(ctx, idx); errs[idx] != nil {
				cancel()
			}
		}(i)
	}
	wg.Wait()

	first := n
	for i, err := range errs {
		if err != nil {
			first = i
			break
		}
	}
	if first == n {
		return n, nil
	}
	if parent.Err() == nil {
		for _, err := range errs[first:] {
			if err != nil && !errors.Is(err, context.Canceled) {
				return first, err
			}
		}
	}
	return first, errs[first]
}
