package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "autopecas", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestBootstrap_ReceivesFlagsAndInjectsServices(t *testing.T) {
	withServices(t, nil)
	t.Cleanup(func() {
		configPath, verbose = "", false
		require.NoError(t, rootCmd.PersistentFlags().Set("config", ""))
		require.NoError(t, rootCmd.PersistentFlags().Set("verbose", "false"))
	})

	r := &mockRunner{}
	closed := false
	var got Options
	SetBootstrap(func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return &Services{Runner: r, Close: func() error {
			closed = true
			return nil
		}}, nil
	})

	_, err := execute(t, "--config", "prod.toml", "--verbose", "run")

	require.NoError(t, err)
	assert.Equal(t, Options{ConfigPath: "prod.toml", Verbose: true}, got)
	assert.True(t, r.started)

	require.NoError(t, teardown())
	assert.True(t, closed)
}

func TestBootstrap_FailureStopsCommand(t *testing.T) {
	withServices(t, nil)
	SetBootstrap(func(_ context.Context, _ Options) (*Services, error) {
		return nil, errors.New("database unreachable")
	})

	_, err := execute(t, "once")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "startup failed: database unreachable")
}

func TestBootstrap_SkippedForVersion(t *testing.T) {
	withServices(t, nil)
	called := false
	SetBootstrap(func(_ context.Context, _ Options) (*Services, error) {
		called = true
		return nil, errors.New("should not run")
	})

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, "autopecas version")
}

func TestSetVersion(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	SetVersion("")
	assert.Equal(t, original, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
