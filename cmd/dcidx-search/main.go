// Command dcidx-search is the search driver: it loads a serialized
// index, reads queries line by line, and writes one ASCII digit per query
// ('1' hit, '0' miss or wrong length) to stdout followed by a trailing
// newline.
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
	"github.com/dcidx/dcidx/internal/search"
)

var fs afero.Fs = afero.NewOsFs()

func main() {
	logger := config.NewLogger()
	root := &cobra.Command{
		Use:          "dcidx-search <query_file> <index_file>",
		Short:        "Answer approximate membership queries against a built index",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(fs, args[0], args[1], os.Stdout, logger)
		},
	}
	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("search failed")
		os.Exit(1)
	}
}

// run loads indexFile, answers every line of queryFile, and writes the
// resulting digit string (plus trailing newline) to out.
func run(fs afero.Fs, queryFile, indexFile string, out io.Writer, logger *logrus.Logger) error {
	start := time.Now()

	idxFile, err := fs.Open(indexFile)
	if err != nil {
		return err
	}
	defer idxFile.Close()

	idx, err := index.Deserialize(idxFile)
	if err != nil {
		return err
	}

	qFile, err := fs.Open(queryFile)
	if err != nil {
		return err
	}
	defer qFile.Close()

	ctx := search.NewContext(idx.N())
	var digits strings.Builder
	var queries, hits int

	scanner := bufio.NewScanner(qFile)
	for scanner.Scan() {
		queries++
		q := strings.TrimRight(scanner.Text(), "\r\n")
		if search.Search(ctx, idx, q) {
			digits.WriteByte('1')
			hits++
		} else {
			digits.WriteByte('0')
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	digits.WriteByte('\n')
	if _, err := io.WriteString(out, digits.String()); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"queries": queries,
		"hits":    hits,
		"elapsed": time.Since(start),
	}).Info("search complete")
	return nil
}
