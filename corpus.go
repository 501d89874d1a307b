package main

import (
	"fmt"
	"io"
	"os"
)

type SourceError struct {
	Path string
	err  error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("can't open %s: %v", e.Path, e.err)
}

func (e SourceError) Unwrap() error {
	return e.err
}

type CorpusError struct {
	Token int
	err   error
}

func (e CorpusError) Error() string {
	return fmt.Sprintf("corpus token %d: %v", e.Token, e.err)
}

func (e CorpusError) Unwrap() error {
	return e.err
}

type BuildStats struct {
	Tokens        int
	Words         int
	Sentences     int
	SingleWord    int
	Skipped       int
	DanglingWords int
}

type CorpusBuilder struct {
	trie     *Trie
	sentence []string
	config   CorpusSettings
	stats    BuildStats
}

func NewCorpusBuilder(cs CorpusSettings) *CorpusBuilder {
	return &CorpusBuilder{
		trie:   NewTrie(),
		config: cs,
	}
}

// Feed adds one raw corpus token. Every storable token, terminators
// included, goes into the main trie; a terminator also closes the current
// sentence and indexes it. Any token starting with the terminator is stored
// as the bare terminator.
func (b *CorpusBuilder) Feed(token string) error {
	b.stats.Tokens++
	word := toLowerASCII(token)
	if isTerminator(word) {
		word = string(sentenceTerminator)
	}

	if err := b.trie.Insert(word); err != nil {
		if b.config.Strict {
			return CorpusError{b.stats.Tokens, err}
		}
		b.stats.Skipped++
		tokensSkipped.Inc()
		logger.Warn("skip corpus token %d: %s", b.stats.Tokens, err)
		return nil
	}
	b.stats.Words++
	wordsInserted.Inc()

	b.sentence = append(b.sentence, word)
	if !isTerminator(word) {
		return nil
	}

	b.trie.IndexSentence(b.sentence, b.config.ResetSingleWord)
	b.stats.Sentences++
	if len(b.sentence) == 2 {
		b.stats.SingleWord++
		sentencesIndexed.WithLabelValues("single").Inc()
	} else if len(b.sentence) > 2 {
		sentencesIndexed.WithLabelValues("multi").Inc()
	}
	b.sentence = b.sentence[:0]
	return nil
}

// Build feeds every token of r and returns the finished trie.
func (b *CorpusBuilder) Build(r io.Reader) (*Trie, error) {
	for token, err := range tokens(r) {
		if err != nil {
			return nil, err
		}
		if err := b.Feed(token); err != nil {
			return nil, err
		}
	}

	if n := len(b.sentence); n > 0 {
		b.stats.DanglingWords = n
		logger.Debug("%d words after the last sentence terminator are not indexed", n)
	}
	return b.trie, nil
}

func (b *CorpusBuilder) Stats() BuildStats {
	return b.stats
}

// BuildTrie builds the main trie, with every sub-trie, from a corpus file.
func BuildTrie(filename string, cs CorpusSettings) (*Trie, BuildStats, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, BuildStats{}, SourceError{filename, err}
	}
	defer f.Close()

	b := NewCorpusBuilder(cs)
	trie, err := b.Build(f)
	if err != nil {
		return nil, b.Stats(), fmt.Errorf("build trie from %s: %w", filename, err)
	}

	stats := b.Stats()
	logger.Info("built trie from %s: %d tokens, %d sentences, %d skipped",
		filename, stats.Tokens, stats.Sentences, stats.Skipped)
	return trie, stats, nil
}
