package lmstfy

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := NewClient(host, port, "m2sync", "token")
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient("", 7777, "m2sync", "token")
	assert.Error(t, err)
}

func TestConsume_NoJob(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"msg":"no job available"}`))
	})

	msg, err := c.Consume("m2sync_status", time.Second, time.Minute)

	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.True(t, strings.HasSuffix(gotPath, "/m2sync/m2sync_status"), gotPath)
}

func TestAck(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Ack("m2sync_status", "job-1")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.True(t, strings.HasSuffix(gotPath, "/m2sync/m2sync_status/job/job-1"), gotPath)
}
