package resilience

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsJobs(t *testing.T) {
	p := NewWorkerPool(4, 16)

	var mu sync.Mutex
	done := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		err := p.Submit(context.Background(), func() {
			defer wg.Done()
			mu.Lock()
			done++
			mu.Unlock()
		})
		assert.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, 50, done)
	p.Close()
}

func TestWorkerPool_RejectsAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 1)
	p.Close()

	err := p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPool_SubmitHonorsContext(t *testing.T) {
	p := NewWorkerPool(1, 1)
	defer p.Close()

	block := make(chan struct{})
	// occupy the single worker and fill the queue
	_ = p.Submit(context.Background(), func() { <-block })
	_ = p.Submit(context.Background(), func() {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)

	close(block)
}
