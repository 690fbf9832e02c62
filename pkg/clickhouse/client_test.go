package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := ClientConfig{
		Host:         "ch.local",
		Port:         9440,
		Database:     "insiderpulse",
		User:         "reader",
		Password:     "p@ss",
		DialTimeout:  5 * time.Second,
		MaxExecTime:  90 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	}
	u, err := url.Parse(buildDSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch.local:9440", u.Host)
	assert.Equal(t, "/insiderpulse", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)

	q := u.Query()
	assert.Equal(t, "5s", q.Get("dial_timeout"))
	assert.Equal(t, "90", q.Get("max_execution_time"))
	assert.Equal(t, "1", q.Get("wait_for_async_insert"))
	assert.Empty(t, q.Get("protocol"))
}

func TestBuildDSNHTTP(t *testing.T) {
	u, err := url.Parse(buildDSN(ClientConfig{Host: "h", Port: 8123, Database: "d", UseHTTP: true}))
	require.NoError(t, err)
	assert.Equal(t, "http", u.Query().Get("protocol"))
	assert.Empty(t, u.Query().Get("async_insert"))
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(WithDatabase("x"))
	assert.Error(t, err)
}
