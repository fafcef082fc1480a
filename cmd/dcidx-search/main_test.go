package main

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/dcidx/dcidx/internal/index"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(bytes.NewBuffer(nil))
	return l
}

func buildIndexFile(t *testing.T, memFs afero.Fs, path string) {
	t.Helper()
	idx := index.Create(0)
	idx.Insert("ABCDEFGHIJABCDE")
	require.NoError(t, idx.Finalize())

	var buf bytes.Buffer
	_, err := idx.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(memFs, path, buf.Bytes(), 0o644))
}

func TestRunWritesOneDigitPerQuery(t *testing.T) {
	memFs := afero.NewMemMapFs()
	buildIndexFile(t, memFs, "db.bin")
	require.NoError(t, afero.WriteFile(memFs, "queries.txt", []byte(
		"ABCDEFGHIJABCDE\n"+ // exact match -> 1
			"ZZZZZZZZZZZZZZZ\n"+ // far away -> 0
			"short\n", // wrong length -> 0
	), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(memFs, "queries.txt", "db.bin", &out, discardLogger()))
	require.Equal(t, "100\n", out.String())
}

func TestRunReturnsErrorOnMissingIndex(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "queries.txt", []byte("ABCDEFGHIJABCDE\n"), 0o644))

	var out bytes.Buffer
	err := run(memFs, "queries.txt", "missing.bin", &out, discardLogger())
	require.Error(t, err)
}
