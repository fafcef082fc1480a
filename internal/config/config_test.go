package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestResolveLogOptionsDefaults(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envLogFormat, "")
	opts := ResolveLogOptions()
	require.Equal(t, logrus.InfoLevel, opts.Level)
	require.False(t, opts.JSON)
}

func TestResolveLogOptionsOverrides(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFormat, "json")
	opts := ResolveLogOptions()
	require.Equal(t, logrus.DebugLevel, opts.Level)
	require.True(t, opts.JSON)
}

func TestResolveLogOptionsIgnoresBadLevel(t *testing.T) {
	t.Setenv(envLogLevel, "not-a-level")
	t.Setenv(envLogFormat, "")
	opts := ResolveLogOptions()
	require.Equal(t, logrus.InfoLevel, opts.Level)
}
