package metrics

import (
	"io"
	"net/http"
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPrometheusService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}
	s := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.NotNil(t, s)
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)
	require.NoError(t, s.Start())

	addrs := s.Addresses()
	require.Len(t, addrs, 1)
	resp, err := http.Get("http://" + addrs[0] + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "go_goroutines")
}

func TestPprofService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}
	s := NewPprofService(cfg, zaptest.NewLogger(t))
	require.NotNil(t, s)
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)

	resp, err := http.Get("http://" + s.Addresses()[0] + "/debug/pprof/cmdline")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDisabledService(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	s.ShutDown()
	require.Nil(t, NewPrometheusService(config.BasicService{}, nil))
}
