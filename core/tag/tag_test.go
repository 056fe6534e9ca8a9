package tag

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pool struct {
	MaxIdle  int           `default:"10"`
	Lifetime time.Duration `default:"1h"`
}

type server struct {
	Addr    string   `default:"127.0.0.1:3000"`
	Enabled bool     `default:"true"`
	Ratio   float64  `default:"0.5"`
	Addrs   []string `default:"a:1,b:2"`
	Pool    pool
	Extra   *pool
	Opt     *pool
	Items   []pool
	skipped string `default:"never"`
}

func TestApplyDefaults(t *testing.T) {
	s := &server{Extra: &pool{}, Items: []pool{{MaxIdle: 3}}}
	require.NoError(t, ApplyDefaults(s))

	assert.Equal(t, "127.0.0.1:3000", s.Addr)
	assert.True(t, s.Enabled)
	assert.Equal(t, 0.5, s.Ratio)
	assert.Equal(t, []string{"a:1", "b:2"}, s.Addrs)
	assert.Equal(t, 10, s.Pool.MaxIdle)
	assert.Equal(t, time.Hour, s.Pool.Lifetime)
	require.NotNil(t, s.Extra)
	assert.Equal(t, 10, s.Extra.MaxIdle)
	assert.Nil(t, s.Opt)
	assert.Equal(t, 3, s.Items[0].MaxIdle)
	assert.Equal(t, time.Hour, s.Items[0].Lifetime)
	assert.Empty(t, s.skipped)
}

func TestApplyDefaultsKeepsValues(t *testing.T) {
	s := &server{Addr: ":9000", Pool: pool{MaxIdle: 1}}
	require.NoError(t, ApplyDefaults(s))

	assert.Equal(t, ":9000", s.Addr)
	assert.Equal(t, 1, s.Pool.MaxIdle)
}

func TestApplyDefaultsErrors(t *testing.T) {
	assert.ErrorIs(t, ApplyDefaults(server{}), ErrTargetMustBePointer)
	assert.ErrorIs(t, ApplyDefaults((*server)(nil)), ErrTargetIsNil)

	n := 1
	assert.ErrorIs(t, ApplyDefaults(&n), ErrUnsupportedType)

	type bad struct {
		Port int `default:"http"`
	}
	err := ApplyDefaults(&bad{})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Port", fe.Path)
}

func TestApplyDefaultsSlicePath(t *testing.T) {
	type item struct {
		Port int `default:"x"`
	}
	type list struct {
		Items []item
	}
	err := ApplyDefaults(&list{Items: []item{{}}})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Items[0].Port", fe.Path)
}
