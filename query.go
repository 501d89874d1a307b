package main

import (
	"bufio"
	"bytes"
	"io"
)

const dumpQuery = "!"

// result kinds, as recorded in audit messages and metrics
const (
	resultDump    = "dump"
	resultSubtrie = "subtrie"
	resultEmpty   = "empty"
	resultInvalid = "invalid"
)

type QueryProcessor struct {
	trie        *Trie
	fingerprint uint64
	cache       Cache
	audit       AuditLogger
	out         *bufio.Writer
}

// NewQueryProcessor answers queries against trie. cache and audit may be
// nil.
func NewQueryProcessor(trie *Trie, out io.Writer, cache Cache, audit AuditLogger) *QueryProcessor {
	p := &QueryProcessor{
		trie:  trie,
		cache: cache,
		audit: audit,
		out:   bufio.NewWriter(out),
	}
	if cache != nil {
		p.fingerprint = trie.Fingerprint()
	}
	return p
}

// Answer writes the report for one raw query token.
func (p *QueryProcessor) Answer(token string) error {
	if token == dumpQuery {
		p.record(token, resultDump)
		return PrintTrie(p.out, p.trie, false)
	}

	key := KeyGen(p.fingerprint, token)
	if p.cache != nil {
		report, err := p.cache.Get(key)
		if err == nil {
			logger.Debug("%s hit cache", token)
			reportCache.WithLabelValues("hit").Inc()
			p.record(token, resultKind(report))
			_, err = p.out.Write(report)
			return err
		}
		logger.Debug("%s didn't hit cache: %s", token, err)
		reportCache.WithLabelValues("miss").Inc()
	}

	var buf bytes.Buffer
	result := p.render(&buf, token)
	p.record(token, result)

	if p.cache != nil {
		if err := p.cache.Set(key, buf.Bytes()); err != nil {
			logger.Debug("Set %s cache failed: %s", token, err.Error())
		}
	}

	_, err := p.out.Write(buf.Bytes())
	return err
}

func (p *QueryProcessor) render(buf *bytes.Buffer, token string) string {
	buf.WriteString(token)
	buf.WriteByte('\n')

	n := p.trie.Lookup(toLowerASCII(token))
	if n == nil {
		buf.WriteString("(INVALID STRING)\n")
		return resultInvalid
	}
	if n.Subtrie() == nil || n.Subtrie().Empty() {
		buf.WriteString("(EMPTY)\n")
		return resultEmpty
	}
	// writes to a bytes.Buffer do not fail
	PrintTrie(buf, n.Subtrie(), true)
	return resultSubtrie
}

// resultKind recovers the result of a cached report from its second line.
func resultKind(report []byte) string {
	_, rest, _ := bytes.Cut(report, []byte{'\n'})
	switch {
	case bytes.HasPrefix(rest, []byte("(INVALID STRING)")):
		return resultInvalid
	case bytes.HasPrefix(rest, []byte("(EMPTY)")):
		return resultEmpty
	}
	return resultSubtrie
}

func (p *QueryProcessor) record(token string, result string) {
	queriesAnswered.WithLabelValues(result).Inc()
	if p.audit != nil {
		p.audit.Write(NewAuditMessage(token, result))
	}
}

// Run answers every token of r in order and flushes the report.
func (p *QueryProcessor) Run(r io.Reader) (int, error) {
	answered := 0
	for token, err := range tokens(r) {
		if err != nil {
			return answered, err
		}
		if err := p.Answer(token); err != nil {
			return answered, err
		}
		answered++
	}
	return answered, p.out.Flush()
}
