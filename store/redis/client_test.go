package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authsvc/log"
)

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(Single(mr.Addr()), WithDebug())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.UniversalClient().Set(ctx, "k", "v", time.Minute).Err())
	got, err := client.UniversalClient().Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = client.UniversalClient().Get(ctx, "missing").Result()
	assert.ErrorIs(t, err, ErrNil)
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := FromURL("redis://" + mr.Addr() + "/2")
	client, err := New(cfg)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, []string{mr.Addr()}, cfg.Addrs)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(FromURL("http://bad"))
	assert.ErrorIs(t, err, ErrInvalidURL)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = New(&Config{Addrs: []string{addr}, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	assert.Equal(t, "cluster", (&Config{Addrs: []string{"a", "b"}}).Mode())
	assert.Equal(t, "sentinel", (&Config{Addrs: []string{"a"}, MasterName: "m"}).Mode())
	assert.Equal(t, "single", Single("a").Mode())

	assert.ErrorIs(t, (&Config{Addrs: []string{"a"}, DialTimeout: -time.Second}).Init(), ErrInvalidTimeout)

	cfg := &Config{}
	require.NoError(t, cfg.Init())
	assert.Equal(t, []string{"127.0.0.1:6379"}, cfg.Addrs)
}

func TestLogHook(t *testing.T) {
	mr := miniredis.RunT(t)

	var buf bytes.Buffer
	cfg := Single(mr.Addr())
	cfg.SlowThreshold = time.Nanosecond
	client, err := New(cfg, WithLogger(log.NewWithWriter(&buf)), WithDebug())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.UniversalClient().Set(ctx, "session:abc", "payload", time.Minute).Err())

	out := buf.String()
	assert.Contains(t, out, `"key":"session:abc"`)
	assert.Contains(t, out, `"threshold"`)
	assert.NotContains(t, out, "payload")
}
