package devserver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muurk/positions/internal/positions"
)

func TestServerRunAndShutdown(t *testing.T) {
	srv, err := New(&Config{Host: "127.0.0.1", Port: 0}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	client := positions.NewClient(fmt.Sprintf("http://%s", srv.Addr()))
	page, err := client.ListRows(context.Background(), "1", positions.DefaultPageRequest())
	require.NoError(t, err)
	require.Equal(t, 2, page.Records)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestNewRejectsHalfTLSConfig(t *testing.T) {
	_, err := New(&Config{CertPath: "cert.pem"}, nil)
	require.Error(t, err)
}
