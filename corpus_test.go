package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCorpusBuilder(t *testing.T) {
	Convey("Tokens are lowercased and counted", t, func() {
		b := NewCorpusBuilder(CorpusSettings{ResetSingleWord: true})
		trie, err := b.Build(strings.NewReader("The cat\tsat.\n.  the\r\nDOG ran .\n"))
		So(err, ShouldBeNil)

		So(trie.Lookup("the").Count(), ShouldEqual, 2)
		So(trie.Lookup("The"), ShouldBeNil)
		So(trie.Lookup("dog").Count(), ShouldEqual, 1)
		So(trie.Lookup(".").Count(), ShouldEqual, 2)

		Convey("A terminator glued to a word is not a terminator", func() {
			So(trie.Lookup("sat."), ShouldBeNil)
			So(trie.Lookup("sat"), ShouldBeNil)
			So(collect(trie.Lookup("cat").Subtrie()), ShouldResemble, []wordCount{
				{".", 1}, {"the", 1},
			})
		})

		Convey("Sentences do not leak into each other", func() {
			So(collect(trie.Lookup("dog").Subtrie()), ShouldResemble, []wordCount{
				{".", 1}, {"ran", 1}, {"the", 1},
			})
			So(collect(trie.Lookup("the").Subtrie()), ShouldResemble, []wordCount{
				{".", 2}, {"cat", 1}, {"dog", 1}, {"ran", 1},
			})
		})

		stats := b.Stats()
		So(stats.Tokens, ShouldEqual, 8)
		So(stats.Words, ShouldEqual, 7)
		So(stats.Skipped, ShouldEqual, 1)
		So(stats.Sentences, ShouldEqual, 2)
		So(stats.DanglingWords, ShouldEqual, 0)
	})

	Convey("Single word sentences", t, func() {
		b := NewCorpusBuilder(CorpusSettings{ResetSingleWord: true})
		single := testutil.ToFloat64(sentencesIndexed.WithLabelValues("single"))

		trie, err := b.Build(strings.NewReader("cat . the cat sat . cat ."))
		So(err, ShouldBeNil)
		So(trie.Lookup("cat").Count(), ShouldEqual, 3)
		So(trie.Lookup("cat").Subtrie(), ShouldBeNil)
		So(trie.Lookup("sat").Subtrie(), ShouldNotBeNil)
		So(b.Stats().SingleWord, ShouldEqual, 2)
		So(testutil.ToFloat64(sentencesIndexed.WithLabelValues("single"))-single, ShouldEqual, 2)

		Convey("Can keep earlier co-occurrences", func() {
			b := NewCorpusBuilder(CorpusSettings{ResetSingleWord: false})
			trie, err := b.Build(strings.NewReader("the cat sat . cat ."))
			So(err, ShouldBeNil)
			So(collect(trie.Lookup("cat").Subtrie()), ShouldResemble, []wordCount{
				{".", 1}, {"sat", 1}, {"the", 1},
			})
		})
	})

	Convey("Terminators with trailing punctuation still end the sentence", t, func() {
		b := NewCorpusBuilder(CorpusSettings{Strict: true})
		trie, err := b.Build(strings.NewReader(`the cat sat ." a dog ran .`))
		So(err, ShouldBeNil)

		So(trie.Lookup(".").Count(), ShouldEqual, 2)
		So(trie.Lookup(`."`), ShouldBeNil)
		So(collect(trie.Lookup("cat").Subtrie()), ShouldResemble, []wordCount{
			{".", 1}, {"sat", 1}, {"the", 1},
		})
		So(collect(trie.Lookup("dog").Subtrie()), ShouldResemble, []wordCount{
			{".", 1}, {"a", 1}, {"ran", 1},
		})
		So(b.Stats().Sentences, ShouldEqual, 2)

		Convey("As do ellipses and commas", func() {
			b := NewCorpusBuilder(CorpusSettings{})
			trie, err := b.Build(strings.NewReader("a b ., c d ... e ."))
			So(err, ShouldBeNil)
			So(trie.Lookup(".").Count(), ShouldEqual, 3)
			So(collect(trie.Lookup("c").Subtrie()), ShouldResemble, []wordCount{
				{".", 1}, {"d", 1},
			})
			So(b.Stats().Sentences, ShouldEqual, 3)
			So(b.Stats().Skipped, ShouldEqual, 0)
		})
	})

	Convey("Words after the last terminator are counted but not indexed", t, func() {
		b := NewCorpusBuilder(CorpusSettings{})
		trie, err := b.Build(strings.NewReader("a b . c d"))
		So(err, ShouldBeNil)
		So(trie.Lookup("d").Count(), ShouldEqual, 1)
		So(trie.Lookup("d").Subtrie(), ShouldBeNil)
		So(b.Stats().DanglingWords, ShouldEqual, 2)
	})

	Convey("Unstorable tokens", t, func() {
		corpus := "the cat's hat . the dog ."

		Convey("Are skipped by default", func() {
			b := NewCorpusBuilder(CorpusSettings{})
			skipped := testutil.ToFloat64(tokensSkipped)

			trie, err := b.Build(strings.NewReader(corpus))
			So(err, ShouldBeNil)
			So(trie.Lookup("cat's"), ShouldBeNil)
			So(collect(trie.Lookup("hat").Subtrie()), ShouldResemble, []wordCount{
				{".", 1}, {"the", 1},
			})
			So(b.Stats().Skipped, ShouldEqual, 1)
			So(testutil.ToFloat64(tokensSkipped)-skipped, ShouldEqual, 1)
		})

		Convey("Fail a strict build", func() {
			b := NewCorpusBuilder(CorpusSettings{Strict: true})
			_, err := b.Build(strings.NewReader(corpus))
			So(err, ShouldNotBeNil)

			var ce CorpusError
			So(errors.As(err, &ce), ShouldBeTrue)
			So(ce.Token, ShouldEqual, 2)

			var we InvalidWordError
			So(errors.As(err, &we), ShouldBeTrue)
			So(we.Word, ShouldEqual, "cat's")
		})
	})

	Convey("Long words and long sentences have no limit", t, func() {
		long := strings.Repeat("a", 100000)
		words := strings.Repeat("x y ", 50)

		b := NewCorpusBuilder(CorpusSettings{})
		trie, err := b.Build(strings.NewReader(long + " " + words + "."))
		So(err, ShouldBeNil)
		So(trie.Lookup(long).Count(), ShouldEqual, 1)
		So(trie.Lookup("x").Count(), ShouldEqual, 50)
		So(trie.Lookup(long).Subtrie().Lookup("y").Count(), ShouldEqual, 50)
	})
}

func TestBuildTrie(t *testing.T) {
	Convey("Corpus files", t, func() {
		dir := t.TempDir()

		Convey("Are read from disk", func() {
			path := filepath.Join(dir, "corpus.txt")
			So(os.WriteFile(path, []byte("dog dog .\n"), 0644), ShouldBeNil)

			trie, stats, err := BuildTrie(path, CorpusSettings{})
			So(err, ShouldBeNil)
			So(stats.Sentences, ShouldEqual, 1)
			So(collect(trie), ShouldResemble, []wordCount{{".", 1}, {"dog", 2}})
		})

		Convey("Missing files are source errors", func() {
			_, _, err := BuildTrie(filepath.Join(dir, "missing.txt"), CorpusSettings{})
			So(err, ShouldHaveSameTypeAs, SourceError{})
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})
	})
}
