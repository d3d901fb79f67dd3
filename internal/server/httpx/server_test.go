package httpx

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_ServeAndShutdown(t *testing.T) {
	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	s := NewHTTPServer(listen.Addr().String(), h, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.serve(ctx, listen) }()

	resp, err := http.Get("http://" + listen.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	s := NewHTTPServer("bad-address", http.NotFoundHandler(), logging.Nop())
	assert.Error(t, s.Run(context.Background()))
}
