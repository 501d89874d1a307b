package main

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type InvalidWordError struct {
	Word string
	Pos  int
}

func (e InvalidWordError) Error() string {
	return fmt.Sprintf("%q: byte %q at %d is not a lowercase letter",
		e.Word, e.Word[e.Pos], e.Pos)
}

type TrieNode struct {
	count    int
	children map[byte]*TrieNode
	subtrie  *Trie
}

func newTrieNode() *TrieNode {
	return &TrieNode{children: map[byte]*TrieNode{}}
}

// Count is the number of times the word ending at this node was inserted.
func (node *TrieNode) Count() int {
	return node.count
}

// Subtrie holds the words seen in the same sentences as this node's word.
// It is nil when no multi-word sentence has touched the word, or when a
// one-word sentence cleared it.
func (node *TrieNode) Subtrie() *Trie {
	return node.subtrie
}

type Trie struct {
	root *TrieNode
}

func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert adds one occurrence of word. Words are either made of a-z or are
// the sentence terminator itself.
func (t *Trie) Insert(word string) error {
	if pos := invalidByte(word); pos >= 0 {
		return InvalidWordError{word, pos}
	}
	t.insert(word)
	return nil
}

func (t *Trie) insert(word string) {
	node := t.root
	for i := 0; i < len(word); i++ {
		c := word[i]
		child, ok := node.children[c]
		if !ok {
			child = newTrieNode()
			node.children[c] = child
		}
		node = child
	}
	node.count++
}

// Lookup returns the node of word, or nil when word was never inserted.
// A path that exists only as a prefix of longer words is not a match.
func (t *Trie) Lookup(word string) *TrieNode {
	node := t.root
	for i := 0; i < len(word); i++ {
		child, ok := node.children[word[i]]
		if !ok {
			return nil
		}
		node = child
	}
	if node.count == 0 {
		return nil
	}
	return node
}

// IndexSentence records co-occurrences for one sentence. The sentence must
// end with its terminator token and every token must already be in t.
func (t *Trie) IndexSentence(sentence []string, resetSingleWord bool) {
	for k := 0; k < len(sentence)-1; k++ {
		n := t.Lookup(sentence[k])
		if n == nil {
			panic(fmt.Sprintf("trie: %q is missing from the trie it was inserted into", sentence[k]))
		}

		// a lone word has nothing to co-occur with; the rest of the sentence
		// is the terminator.
		if isTerminator(sentence[1]) {
			if resetSingleWord {
				n.subtrie = nil
			}
			return
		}

		if n.subtrie == nil {
			n.subtrie = NewTrie()
		}
		for j := 0; j < len(sentence); j++ {
			if sentence[j] == sentence[k] {
				continue
			}
			n.subtrie.insert(sentence[j])
		}
	}
}

// Words yields every stored word with its count, depth first, children in
// byte order. The root is never yielded.
func (t *Trie) Words() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		buf := make([]byte, 0, 32)
		for _, c := range slices.Sorted(maps.Keys(t.root.children)) {
			if !walk(t.root.children[c], append(buf, c), yield) {
				return
			}
		}
	}
}

func walk(node *TrieNode, buf []byte, yield func(string, int) bool) bool {
	if node.count > 0 && !yield(string(buf), node.count) {
		return false
	}
	for _, c := range slices.Sorted(maps.Keys(node.children)) {
		if !walk(node.children[c], append(buf, c), yield) {
			return false
		}
	}
	return true
}

func (t *Trie) Empty() bool {
	for range t.Words() {
		return false
	}
	return true
}

// PrintTrie writes one "word (count)" line per word of t. Sub-trie
// formatting prefixes every line with "- ".
func PrintTrie(w io.Writer, t *Trie, useSubtrieFormatting bool) error {
	bw := bufio.NewWriter(w)
	line := make([]byte, 0, 64)
	for word, count := range t.Words() {
		line = line[:0]
		if useSubtrieFormatting {
			line = append(line, "- "...)
		}
		line = append(line, word...)
		line = append(line, " ("...)
		line = strconv.AppendInt(line, int64(count), 10)
		line = append(line, ")\n"...)
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Fingerprint hashes every word, count and sub-trie of t. Tries that render
// the same reports have the same fingerprint.
func (t *Trie) Fingerprint() uint64 {
	d := xxhash.New()
	t.digest(d)
	return d.Sum64()
}

func (t *Trie) digest(d *xxhash.Digest) {
	num := make([]byte, 0, 20)
	for word, count := range t.Words() {
		d.WriteString(word)
		d.WriteString(" ")
		d.Write(strconv.AppendInt(num[:0], int64(count), 10))
		if sub := t.Lookup(word).subtrie; sub != nil {
			d.WriteString("{")
			sub.digest(d)
			d.WriteString("}")
		}
		d.WriteString("\n")
	}
}
