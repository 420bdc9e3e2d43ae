package app

import (
	"context"
	"sync"
	"testing"

	"warmup-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServer_ShutdownTwice(t *testing.T) {
	srv := NewServer(config.AppConfig{})

	require.NotPanics(t, func() {
		assert.NoError(t, srv.Shutdown(context.Background()))
		assert.NoError(t, srv.Shutdown(context.Background()))
	})

	select {
	case <-srv.done:
	default:
		t.Fatal("done channel still open after shutdown")
	}
}

func TestServer_ConcurrentShutdown(t *testing.T) {
	srv := NewServer(config.AppConfig{})
	require.True(t, srv.own(func() { srv.logger = zap.NewNop() }))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, srv.Shutdown(context.Background()))
		}()
	}
	wg.Wait()

	assigned := false
	assert.False(t, srv.own(func() { assigned = true }))
	assert.False(t, assigned)
}
