package main

import (
	"bufio"
	"bytes"
	"io"
	"iter"
)

const sentenceTerminator = '.'

func isTerminator(token string) bool {
	return len(token) > 0 && token[0] == sentenceTerminator
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// invalidByte returns the position of the first byte that can not be stored
// in a trie, or -1 when the whole word is storable. The terminator is the
// only storable word that is not made of letters.
func invalidByte(word string) int {
	if len(word) == 1 && word[0] == sentenceTerminator {
		return -1
	}
	for i := 0; i < len(word); i++ {
		if !isWordByte(word[i]) {
			return i
		}
	}
	return -1
}

// toLowerASCII lowercases A-Z and leaves every other byte alone.
func toLowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// isSpace matches the C isspace set.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// tokens yields whitespace separated tokens from r. There is no limit on
// token length. A read error other than io.EOF is yielded once and ends the
// sequence.
func tokens(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)
		var buf bytes.Buffer
		for {
			c, err := br.ReadByte()
			if err != nil {
				if buf.Len() > 0 && !yield(buf.String(), nil) {
					return
				}
				if err != io.EOF {
					yield("", err)
				}
				return
			}
			if !isSpace(c) {
				buf.WriteByte(c)
				continue
			}
			if buf.Len() == 0 {
				continue
			}
			if !yield(buf.String(), nil) {
				return
			}
			buf.Reset()
		}
	}
}
