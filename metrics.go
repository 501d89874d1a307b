package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registry = prometheus.NewRegistry()

	wordsInserted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "trie_words_inserted_total",
		Help: "Corpus tokens inserted into the main trie",
	})

	tokensSkipped = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "trie_tokens_skipped_total",
		Help: "Corpus tokens rejected as not storable",
	})

	// kind is "single" or "multi"
	sentencesIndexed = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "trie_sentences_indexed_total",
		Help: "Sentences indexed into co-occurrence sub-tries",
	}, []string{"kind"})

	queriesAnswered = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "trie_queries_total",
		Help: "Queries answered by result",
	}, []string{"result"})

	reportCache = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "trie_report_cache_total",
		Help: "Report cache lookups by outcome",
	}, []string{"outcome"})
)

// writeMetrics dumps every counter in the node_exporter textfile format.
func writeMetrics(ms MetricsSettings) error {
	if ms.File == "" {
		return nil
	}
	return prometheus.WriteToTextfile(ms.File, registry)
}
