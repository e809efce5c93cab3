package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe(t *testing.T) {
	t.Run("answers while startup work is still running", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv := &http.Server{Handler: mux}

		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		release := make(chan struct{})
		defer close(release)

		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, srv, ln, time.Second, func(context.Context) {
				close(started)
				<-release
			})
		}()
		<-started

		res, err := http.Get("http://" + ln.Addr().String() + "/health")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not return after shutdown")
		}
	})

	t.Run("demo mode has no startup work", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, serve(ctx, &http.Server{Handler: http.NewServeMux()}, ln, time.Second, nil))
	})
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "warn", logLevel("WARNING"))
	assert.Equal(t, "debug", logLevel("DEBUG"))
}
