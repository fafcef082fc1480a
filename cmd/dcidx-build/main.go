// Command dcidx-build is the prep driver: it reads newline-terminated
// L-character words from a file, discards malformed lines, and writes the
// serialized index to stdout.
package main

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dcidx/dcidx/internal/config"
	"github.com/dcidx/dcidx/internal/index"
	"github.com/dcidx/dcidx/internal/nibble"
)

// fs is the filesystem abstraction every driver in this module reads
// through: production code always sees the real OS filesystem, but tests
// can swap in an afero.MemMapFs without touching disk.
var fs afero.Fs = afero.NewOsFs()

func main() {
	logger := config.NewLogger()
	root := &cobra.Command{
		Use:          "dcidx-build <db_file>",
		Short:        "Build a dual-case index from a dictionary file and write it to stdout",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(fs, args[0], os.Stdout, logger)
		},
	}
	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("build failed")
		os.Exit(1)
	}
}

// run reads dbFile line by line, discarding lines whose stripped length is
// not nibble.Len, builds and finalizes an index, and writes the serialized
// form to out.
func run(fs afero.Fs, dbFile string, out io.Writer, logger *logrus.Logger) error {
	start := time.Now()

	f, err := fs.Open(dbFile)
	if err != nil {
		return err
	}
	defer f.Close()

	idx := index.Create(0)
	var total, kept int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		total++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) != nibble.Len {
			continue
		}
		idx.Insert(line)
		kept++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := idx.Finalize(); err != nil {
		return err
	}

	n, err := idx.WriteTo(out)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"lines_read":    total,
		"words_kept":    kept,
		"bytes_written": n,
		"elapsed":       time.Since(start),
	}).Info("index built")
	return nil
}
