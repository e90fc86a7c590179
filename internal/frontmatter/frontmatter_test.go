package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	block, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, block)
	require.Equal(t, input, body)
}

func TestSplit_SplitsBlockAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	block, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), block)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	input := []byte("---\r\n layout: default\r\n---\r\n\r\n# Hello World!")

	block, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte(" layout: default\r\n"), block)
	require.Equal(t, []byte("\r\n# Hello World!"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	block, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, block)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	block, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), block)
	require.Empty(t, body)
}

func TestSplit_DelimiterMustBeFirstLine(t *testing.T) {
	input := []byte("\n---\ntitle: x\n---\n")
	_, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Equal(t, input, body)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParse_TypedValues(t *testing.T) {
	input := []byte(`---
title: "My: Site"
layout: default
order: 3
weight: 1.5
draft: false
tags: [go, web]
permalink: /somepage.html
---
body`)

	fm, body, err := Parse(input, Options{})
	require.NoError(t, err)
	require.Equal(t, []byte("body"), body)
	require.Equal(t, []string{"title", "layout", "order", "weight", "draft", "tags", "permalink"}, fm.Keys())

	title, err := fm.String("title")
	require.NoError(t, err)
	require.Equal(t, "My: Site", title)

	order, err := fm.Number("order")
	require.NoError(t, err)
	require.InDelta(t, 3, order, 0)

	draft, err := fm.Bool("draft")
	require.NoError(t, err)
	require.False(t, draft)

	tags, err := fm.List("tags")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "go", tags[0].String())

	require.Equal(t, map[string]any{
		"title":     "My: Site",
		"layout":    "default",
		"order":     int64(3),
		"weight":    1.5,
		"draft":     false,
		"tags":      []any{"go", "web"},
		"permalink": "/somepage.html",
	}, fm.Map())
}

func TestParse_BlockListContinuation(t *testing.T) {
	fm, _, err := Parse([]byte("---\ntags:\n  - one\n  - 2\ntitle: x\n---\n"), Options{Strict: true})
	require.NoError(t, err)

	tags, err := fm.List("tags")
	require.NoError(t, err)
	require.Equal(t, []any{"one", int64(2)}, fm.Map()["tags"])
	require.Len(t, tags, 2)
}

func TestParse_UnquotedColonValueStaysString(t *testing.T) {
	fm, _, err := Parse([]byte("---\ntitle: Go: the good parts\n---\n"), Options{})
	require.NoError(t, err)
	title, err := fm.String("title")
	require.NoError(t, err)
	require.Equal(t, "Go: the good parts", title)
}

func TestParse_NoFrontMatter_ReturnsInputUnchanged(t *testing.T) {
	input := []byte("<html><head></head><body></body></html>")
	fm, body, err := Parse(input, Options{Strict: true})
	require.NoError(t, err)
	require.Equal(t, 0, fm.Len())
	require.Equal(t, input, body)
}

func TestParse_MalformedLine(t *testing.T) {
	input := []byte("---\nlayout: default\nthis line is wrong\n---\nbody")

	t.Run("lenient skips", func(t *testing.T) {
		fm, body, err := Parse(input, Options{})
		require.NoError(t, err)
		require.Equal(t, []string{"layout"}, fm.Keys())
		require.Equal(t, []byte("body"), body)
	})

	t.Run("strict fails", func(t *testing.T) {
		_, _, err := Parse(input, Options{Strict: true})
		var fmErr *Error
		require.ErrorAs(t, err, &fmErr)
		require.Equal(t, 3, fmErr.Line)
		require.Equal(t, "this line is wrong", fmErr.Text)
		require.ErrorIs(t, err, ErrMalformedLine)
	})
}

func TestParse_Unterminated(t *testing.T) {
	input := []byte("---\ntitle: x\n# Heading\n")

	fm, body, err := Parse(input, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, fm.Len())
	require.Equal(t, input, body)

	_, _, err = Parse(input, Options{Strict: true})
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestAccessorErrors(t *testing.T) {
	fm, _, err := Parse([]byte("---\norder: 2\n---\n"), Options{})
	require.NoError(t, err)

	_, err = fm.String("missing")
	var notFound *KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "missing", notFound.Key)

	_, err = fm.String("order")
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, KindNumber, mismatch.Got)
	require.Equal(t, KindString, mismatch.Want)
	require.Equal(t, `front matter key "order" is a number, not a string`, err.Error())
}

func TestWith_CopiesAndKeepsOrder(t *testing.T) {
	fm, _, err := Parse([]byte("---\na: 1\nb: 2\n---\n"), Options{})
	require.NoError(t, err)

	updated := fm.With("a", StringValue("x")).With("c", BoolValue(true))
	require.Equal(t, []string{"a", "b", "c"}, updated.Keys())
	require.Equal(t, []string{"a", "b"}, fm.Keys())

	a, err := fm.Number("a")
	require.NoError(t, err)
	require.InDelta(t, 1, a, 0)
}

func TestNilFrontMatterIsEmpty(t *testing.T) {
	var fm *FrontMatter
	require.Equal(t, 0, fm.Len())
	require.False(t, fm.Has("x"))
	require.Empty(t, fm.Map())
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	fm, body, err := Parse([]byte("---\ntitle: a\n---\nbody\n"), Options{})
	require.NoError(t, err)

	first := Fingerprint(fm, body)
	require.NotEmpty(t, first)
	require.Equal(t, first, Fingerprint(fm, body))
	require.NotEqual(t, first, Fingerprint(fm, []byte("other\n")))
	require.NotEqual(t, first, Fingerprint(fm.With("title", StringValue("b")), body))
}
