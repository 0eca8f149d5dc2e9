package opra

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunker defaults.
const (
	DefaultMaxChunkSize = 1500
	DefaultOverlap      = 200
)

// sectionPattern recognizes one style of legal section header. Patterns are
// tried in order and the first with at least one match is used.
type sectionPattern struct {
	marker string
	re     *regexp.Regexp
}

var sectionPatterns = []sectionPattern{
	{"§", regexp.MustCompile(`(?m)^[ \t]*§[ \t]*(\d[\d-]*)[ \t]*[.-]?[ \t]*([^\n]+)\n`)},
	{"Section", regexp.MustCompile(`(?mi)^[ \t]*section[ \t]*(\d[\d.]*)[ \t]*[.-]?[ \t]*([^\n]+)\n`)},
	{"§", regexp.MustCompile(`(?m)^[ \t]*(\d+)\.[ \t]*([^\n]+)\n`)},
}

var (
	paragraphBreakRE = regexp.MustCompile(`\n[ \t\r]*\n\s*`)
	sentenceRE       = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// Chunker splits ordinance text into overlapping segments aligned to legal
// sections when they can be detected and to paragraphs otherwise.
type Chunker struct {
	maxSize int
	overlap int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithMaxChunkSize sets the target maximum chunk length in bytes.
func WithMaxChunkSize(n int) ChunkerOption {
	return func(c *Chunker) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithOverlap sets the maximum length of the context carried from one chunk
// into the next when a section is split.
func WithOverlap(n int) ChunkerOption {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// NewChunker creates a Chunker with the given options.
func NewChunker(opts ...ChunkerOption) *Chunker {
	c := &Chunker{
		maxSize: DefaultMaxChunkSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// section is a detected legal section with byte offsets into the source.
type section struct {
	marker string
	number string
	title  string
	body   []span
	start  int
	end    int
}

// span is a piece of source text and its byte range.
type span struct {
	text  string
	start int
	end   int
}

// Chunk splits text into chunks. Chunk indices run from 0 in emission order
// and StartChar/EndChar are byte offsets into text. OrdinanceID is left for
// the caller to set.
func (c *Chunker) Chunk(text string) []*Chunk {
	var chunks []*Chunk
	emit := func(content string, start, end int, sec *section) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		ch := &Chunk{
			Index:     len(chunks),
			Content:   content,
			StartChar: start,
			EndChar:   end,
		}
		if sec != nil {
			ch.SectionNumber = sec.number
			ch.SectionTitle = sec.title
		}
		chunks = append(chunks, ch)
	}

	preamble, sections := extractSections(text)
	if len(sections) == 0 {
		c.pack("", "", c.paragraphs(text, 0), 0, nil, emit)
		return chunks
	}

	// Text ahead of the first header is kept, unlabeled.
	if strings.TrimSpace(preamble) != "" {
		c.pack("", "", c.paragraphs(preamble, 0), 0, nil, emit)
	}

	for i := range sections {
		sec := &sections[i]
		header := fmt.Sprintf("%s %s - %s\n\n", sec.marker, sec.number, sec.title)
		cont := fmt.Sprintf("%s %s (continued)\n\n", sec.marker, sec.number)
		c.pack(header, cont, c.bound(sec.body), sec.start, sec, emit)
	}
	return chunks
}

// pack accumulates spans into chunks of at most maxSize, opening each
// continuation chunk with cont and an overlap tail from the previous chunk.
// A header with no body is emitted on its own.
func (c *Chunker) pack(header, cont string, spans []span, start int, sec *section, emit func(string, int, int, *section)) {
	var buf, body strings.Builder
	buf.WriteString(header)
	hasBody := false
	chunkStart, chunkEnd := start, start

	for _, p := range spans {
		if !hasBody && header == "" {
			chunkStart = p.start
		}
		if hasBody && buf.Len()+len(p.text) > c.maxSize {
			emit(buf.String(), chunkStart, chunkEnd, sec)

			tail := c.overlapTail(body.String())
			buf.Reset()
			body.Reset()
			buf.WriteString(cont)
			buf.WriteString(tail)
			body.WriteString(tail)
			chunkStart = max(chunkStart, p.start-len(tail))
		}
		buf.WriteString(p.text)
		buf.WriteString("\n\n")
		body.WriteString(p.text)
		body.WriteString("\n\n")
		chunkEnd = p.end
		hasBody = true
	}

	switch {
	case hasBody:
		emit(buf.String(), chunkStart, chunkEnd, sec)
	case header != "" && sec != nil:
		emit(header, sec.start, sec.end, sec)
	}
}

// overlapTail returns the trailing whole sentences of s whose combined length
// does not exceed the overlap size. When no sentence fits it falls back to a
// raw trailing substring.
func (c *Chunker) overlapTail(s string) string {
	if c.overlap == 0 {
		return ""
	}
	s = strings.TrimSpace(s)

	var tail string
	sentences := sentenceRE.FindAllString(s, -1)
	for i := len(sentences) - 1; i >= 0; i-- {
		candidate := sentences[i] + tail
		if len(strings.TrimSpace(candidate)) > c.overlap {
			break
		}
		tail = candidate
	}
	tail = strings.TrimSpace(tail)

	if tail == "" {
		tail = strings.TrimSpace(trailingBytes(s, c.overlap))
	}
	if tail == "" {
		return ""
	}
	return tail + "\n\n"
}

// extractSections finds section headers using the first pattern with any
// match. It returns the text preceding the first header and the sections.
func extractSections(text string) (string, []section) {
	src := text
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}

	for _, p := range sectionPatterns {
		matches := p.re.FindAllStringSubmatchIndex(src, -1)
		if len(matches) == 0 {
			continue
		}

		sections := make([]section, 0, len(matches))
		for i, m := range matches {
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			bodyStart := min(m[1], len(text))
			sec := section{
				marker: p.marker,
				number: strings.TrimRight(strings.TrimSpace(src[m[2]:m[3]]), ".-"),
				title:  strings.TrimSpace(src[m[4]:m[5]]),
				start:  m[0],
				end:    end,
			}
			sec.body = splitParagraphs(text[bodyStart:end], bodyStart)
			sections = append(sections, sec)
		}
		return text[:matches[0][0]], sections
	}
	return text, nil
}

// paragraphs splits text into paragraph spans, breaking any paragraph longer
// than maxSize at sentence boundaries and, failing that, at maxSize bytes.
func (c *Chunker) paragraphs(text string, base int) []span {
	return c.bound(splitParagraphs(text, base))
}

// splitParagraphs splits text on blank lines into trimmed, non-empty spans.
// base is the offset of text within the whole document.
func splitParagraphs(text string, base int) []span {
	var spans []span
	prev := 0
	add := func(from, to int) {
		raw := text[from:to]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return
		}
		lead := strings.Index(raw, trimmed)
		spans = append(spans, span{
			text:  trimmed,
			start: base + from + lead,
			end:   base + from + lead + len(trimmed),
		})
	}
	for _, loc := range paragraphBreakRE.FindAllStringIndex(text, -1) {
		add(prev, loc[0])
		prev = loc[1]
	}
	add(prev, len(text))
	return spans
}

// bound splits spans longer than maxSize.
func (c *Chunker) bound(spans []span) []span {
	out := make([]span, 0, len(spans))
	for _, p := range spans {
		if len(p.text) <= c.maxSize {
			out = append(out, p)
			continue
		}
		out = append(out, c.splitLong(p)...)
	}
	return out
}

// splitLong groups the sentences of an oversized span into pieces of at
// most maxSize, hard-cutting sentences that are longer than that.
func (c *Chunker) splitLong(p span) []span {
	var pieces []span
	var cur span
	flush := func() {
		if t := strings.TrimSpace(cur.text); t != "" {
			lead := strings.Index(cur.text, t)
			pieces = append(pieces, span{text: t, start: cur.start + lead, end: cur.start + lead + len(t)})
		}
		cur = span{}
	}
	appendPiece := func(s string, start int) {
		if cur.text != "" && len(cur.text)+len(s) > c.maxSize {
			flush()
		}
		if cur.text == "" {
			cur.start = start
		}
		cur.text += s
		cur.end = start + len(s)
	}

	for _, s := range sentenceSpans(p.text) {
		text, start := s.text, p.start+s.start
		for len(text) > c.maxSize {
			cut := runeBoundary(text, c.maxSize)
			appendPiece(text[:cut], start)
			flush()
			text, start = text[cut:], start+cut
		}
		appendPiece(text, start)
	}
	flush()
	return pieces
}

// sentenceSpans splits s into sentences, keeping any unterminated tail.
func sentenceSpans(s string) []span {
	var spans []span
	prev := 0
	for _, loc := range sentenceRE.FindAllStringIndex(s, -1) {
		spans = append(spans, span{text: s[prev:loc[1]], start: prev, end: loc[1]})
		prev = loc[1]
	}
	if prev < len(s) {
		spans = append(spans, span{text: s[prev:], start: prev, end: len(s)})
	}
	return spans
}

// trailingBytes returns at most n trailing bytes of s without splitting a rune.
func trailingBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

// runeBoundary returns the largest index <= n that starts a rune in s.
func runeBoundary(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	i := n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	if i == 0 {
		return n
	}
	return i
}
