// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package pool runs a fixed set of workers draining a shared job cursor.
package pool

import (
	"sync"
	"sync/atomic"
)

// Run executes fn(i) for i in [0, n) using at most workers concurrent
// goroutines pulling indexes from a shared cursor. It returns when every
// job has completed. fn is responsible for its own error handling; one
// job's failure never affects its siblings.
func Run(workers, n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	cursor := int64(-1)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1))
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}
