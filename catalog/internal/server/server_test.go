package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/Astemirdum/book-catalog/catalog/config"
	"github.com/Astemirdum/book-catalog/catalog/internal/server"
	"github.com/stretchr/testify/require"
)

func TestServer_ServeAndStop(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	srv := server.NewServer(config.HTTPServer{ReadTimeout: time.Second, WriteTimeout: time.Second}, router)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/manage/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "OK", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, <-done)
}

func TestServer_Addr(t *testing.T) {
	srv := server.NewServer(config.HTTPServer{Host: "localhost", Port: "8000"}, http.NotFoundHandler())
	require.Equal(t, "localhost:8000", srv.Addr())
}
