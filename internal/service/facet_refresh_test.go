package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type refresherMock struct {
	calls int32
	err   error
}

func (m *refresherMock) RefreshFacets(context.Context) error {
	atomic.AddInt32(&m.calls, 1)
	return m.err
}

func TestRunFacetRefreshOnce_LogsFailure(t *testing.T) {
	m := &refresherMock{err: fmt.Errorf("catalog down")}
	RunFacetRefreshOnce(context.Background(), m, zap.NewNop())
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.calls))
}

func TestRunFacetRefreshLoop(t *testing.T) {
	m := &refresherMock{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunFacetRefreshLoop(ctx, m, 5*time.Millisecond, nil)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&m.calls) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not stop after cancel")
	}
}
