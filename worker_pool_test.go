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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsAllWork(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 4, 2)
	var done atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		assert.NoError(t, pool.Submit(func() {
			defer wg.Done()
			done.Add(1)
		}))
	}
	wg.Wait()
	pool.Close()
	assert.EqualValues(t, 20, done.Load())
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3, 10)
	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		_ = pool.Submit(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}
	wg.Wait()
	pool.Close()
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, 0)
	cancel()
	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, context.Canceled)
	pool.Close()
}

func TestWorkerPoolDrainsQueuedWorkOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, 5)
	release := make(chan struct{})
	var ran atomic.Int32
	var wg sync.WaitGroup

	wg.Add(1)
	assert.NoError(t, pool.Submit(func() {
		defer wg.Done()
		<-release
		ran.Add(1)
	}))
	for i := 0; i < 3; i++ {
		wg.Add(1)
		assert.NoError(t, pool.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	cancel()
	close(release)
	wg.Wait()
	pool.Close()
	assert.EqualValues(t, 4, ran.Load())
}
