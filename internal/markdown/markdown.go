// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown derives reading metrics from Markdown source. It parses
// the source with goldmark and counts the words a reader would actually
// see: structural markers, link targets, images and fenced code are not
// part of the count.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 200

// md is the configured goldmark instance, reused across calls. Only its
// parser is used; nothing is rendered.
var md = goldmark.New()

// Metrics holds the values derived from a post's content.
type Metrics struct {
	WordCount   int
	ReadingTime int // minutes, always >= 1
}

// Measure computes word count and reading time for content.
func Measure(content string) Metrics {
	words := WordCount(content)
	return Metrics{WordCount: words, ReadingTime: ReadingTime(words)}
}

// WordCount returns the number of whitespace-separated words in the
// visible text of content.
func WordCount(content string) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	return len(strings.Fields(PlainText(content)))
}

// ReadingTime returns ceil(words / WordsPerMinute) minutes, never less than 1.
func ReadingTime(words int) int {
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// PlainText strips Markdown structure from source. Heading markers and
// emphasis/code delimiters are dropped but their text is kept, links keep
// their text and lose the URL, images and fenced code blocks disappear
// entirely. Block boundaries and line breaks become spaces.
func PlainText(source string) string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.HTMLBlock:
			writeLines(&b, node.Lines(), src)
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		case *ast.RawHTML:
			writeLines(&b, node.Segments, src)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func writeLines(b *strings.Builder, lines *text.Segments, src []byte) {
	if lines == nil {
		return
	}
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
		b.WriteByte(' ')
	}
}
