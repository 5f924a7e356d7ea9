// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package brokenlinks

import (
	"context"
	"sync"
)

// WorkerPool runs submitted work on a fixed number of goroutines.
type WorkerPool struct {
	maxWorkers int
	workQueue  chan func()
	wg         *sync.WaitGroup
	ctx        context.Context
}

// NewWorkerPool creates a new worker pool with the specified number of workers and queue size.
// Parameters:
//   - ctx: Context for cancellation of Submit
//   - maxWorkers: Number of concurrent worker goroutines
//   - queueSize: Buffer size for the work queue (blocks when full)
func NewWorkerPool(ctx context.Context, maxWorkers int, queueSize int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	wp := &WorkerPool{
		maxWorkers: maxWorkers,
		workQueue:  make(chan func(), queueSize),
		wg:         &sync.WaitGroup{},
		ctx:        ctx,
	}
	for i := 0; i < maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

// worker runs queued work until the queue is closed. Work accepted before
// cancellation is still run so callers waiting on it are released; the
// work itself observes ctx.
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for work := range wp.workQueue {
		work()
	}
}

// Submit queues a work item, blocking while the queue is full.
// Returns the context error if the pool's context is cancelled first.
func (wp *WorkerPool) Submit(work func()) error {
	if err := wp.ctx.Err(); err != nil {
		return err
	}
	select {
	case wp.workQueue <- work:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Close stops accepting work and waits for queued work to finish.
func (wp *WorkerPool) Close() {
	close(wp.workQueue)
	wp.wg.Wait()
}
