package main

import (
	"io"
	"os"
)

type Runner struct {
	settings Settings
	out      io.Writer
}

func NewRunner(s Settings, out io.Writer) *Runner {
	return &Runner{settings: s, out: out}
}

// Run builds the trie from the corpus file and answers every query of the
// query file. The query file is opened first, so a missing query file ends
// the run before the corpus is read.
func (r *Runner) Run() error {
	s := r.settings

	queries, err := os.Open(s.Query.File)
	if err != nil {
		return SourceError{s.Query.File, err}
	}
	defer queries.Close()

	trie, _, err := BuildTrie(s.Corpus.File, s.Corpus)
	if err != nil {
		return err
	}

	cache, err := NewCache(s.Cache, s.Redis)
	if err != nil {
		return err
	}

	audit, err := NewAuditLogger(s.Audit, s.Redis, s.Postgresql)
	if err != nil {
		logger.Error("audit disabled: %s", err)
		audit = nil
	}
	if audit != nil {
		defer audit.Close()
	}

	processor := NewQueryProcessor(trie, r.out, cache, audit)
	n, err := processor.Run(queries)
	if err != nil {
		return err
	}
	logger.Info("answered %d queries from %s", n, s.Query.File)

	if err := writeMetrics(s.Metrics); err != nil {
		logger.Warn("Can't write metrics to %s: %s", s.Metrics.File, err)
	}
	return nil
}
