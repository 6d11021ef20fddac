// Package description renders AppStream description markup.
//
// AppStream descriptions use a small HTML subset: p, ul, ol, li, em and
// code, plus the occasional br in the wild. Other tags are dropped and
// their text kept.
package description

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
)

// hardBreak marks a <br> inside a block until rendering.
const hardBreak = "\x00"

type blockKind int

const (
	paragraph blockKind = iota
	listItem
)

type block struct {
	kind   blockKind
	marker string // "- " or "3. " for list items
	indent int    // columns of enclosing list markers
	md     string
	plain  string
}

type list struct {
	ordered bool
	n       int
	indent  int
}

type walker struct {
	blocks []block
	lists  []list
	md     strings.Builder
	plain  strings.Builder
	item   *block
}

// parse splits desc into paragraphs and list items. Text outside any tag is
// treated as a paragraph. A bare '<' in text is escaped and parsing retried.
func parse(desc string) ([]block, error) {
	blocks, err := decode(desc)
	if err == nil {
		return blocks, nil
	}
	if escaped := escapeStray(desc); escaped != desc {
		if blocks, retryErr := decode(escaped); retryErr == nil {
			return blocks, nil
		}
	}
	return nil, err
}

func decode(desc string) ([]block, error) {
	dec := xml.NewDecoder(strings.NewReader("<description>" + desc + "</description>"))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	w := &walker{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			w.start(strings.ToLower(t.Name.Local))
		case xml.EndElement:
			w.end(strings.ToLower(t.Name.Local))
		case xml.CharData:
			w.text(string(t))
		}
	}
	w.flush()
	return w.blocks, nil
}

// escapeStray escapes every '<' that cannot open a tag.
func escapeStray(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !opensTag(s[i+1:]) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func opensTag(rest string) bool {
	if rest == "" {
		return false
	}
	c := rest[0]
	return c == '/' || c == '!' || c == '?' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

// stripTags removes everything that looks like a tag and unescapes
// entities. It is the fallback for markup the decoder rejects.
func stripTags(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && opensTag(s[i+1:]) {
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				break
			}
			i += end
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(s[i])
	}
	return html.UnescapeString(b.String())
}

func (w *walker) start(tag string) {
	switch tag {
	case "p":
		w.flush()
	case "ul", "ol":
		w.flush()
		indent := 0
		if n := len(w.lists); n > 0 {
			parent := w.lists[n-1]
			indent = parent.indent + len(parent.marker())
		}
		w.lists = append(w.lists, list{ordered: tag == "ol", indent: indent})
	case "li":
		w.flush()
		if len(w.lists) == 0 {
			w.lists = append(w.lists, list{})
		}
		l := &w.lists[len(w.lists)-1]
		l.n++
		w.item = &block{kind: listItem, marker: l.marker(), indent: l.indent}
	case "br":
		w.md.WriteString(hardBreak)
		w.plain.WriteString(hardBreak)
	case "em", "i":
		w.md.WriteString("*")
	case "strong", "b":
		w.md.WriteString("**")
	case "code":
		w.md.WriteString("`")
	}
}

func (w *walker) end(tag string) {
	switch tag {
	case "p", "li":
		w.flush()
		if tag == "li" {
			w.item = nil
		}
	case "ul", "ol":
		w.flush()
		w.item = nil
		if n := len(w.lists); n > 0 {
			w.lists = w.lists[:n-1]
		}
	case "em", "i":
		w.md.WriteString("*")
	case "strong", "b":
		w.md.WriteString("**")
	case "code":
		w.md.WriteString("`")
	}
}

func (w *walker) text(s string) {
	w.md.WriteString(escapeMarkdown(s))
	w.plain.WriteString(s)
}

// flush closes the pending inline text into a block. Text following a
// nested list inside the same item continues as a new item block.
func (w *walker) flush() {
	md, plain := collapse(w.md.String()), collapse(w.plain.String())
	w.md.Reset()
	w.plain.Reset()
	if plain == "" && strings.Trim(md, "*`") == "" {
		return
	}

	b := block{kind: paragraph, md: md, plain: plain}
	if w.item != nil {
		b.kind = listItem
		b.marker = w.item.marker
		b.indent = w.item.indent
	}
	w.blocks = append(w.blocks, b)
}

func (l list) marker() string {
	if l.ordered {
		return strconv.Itoa(l.n) + ". "
	}
	return "- "
}

// collapse folds whitespace runs to single spaces within each hard-break
// segment and trims the result.
func collapse(s string) string {
	parts := strings.Split(s, hardBreak)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, hardBreak)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`&`, `\&`,
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ToMarkdown converts description markup to Markdown.
func ToMarkdown(desc string) string {
	blocks, err := parse(desc)
	if err != nil {
		return escapeLeading(escapeMarkdown(collapse(stripTags(desc))))
	}

	var out []string
	prevItem := false
	for _, b := range blocks {
		isItem := b.kind == listItem
		if len(out) > 0 && !(isItem && prevItem) {
			out = append(out, "")
		}
		prevItem = isItem

		if !isItem {
			out = append(out, strings.ReplaceAll(escapeLeading(b.md), hardBreak, "\\\n"))
			continue
		}
		pad := strings.Repeat(" ", b.indent)
		cont := "\\\n" + pad + strings.Repeat(" ", len(b.marker))
		out = append(out, pad+b.marker+strings.ReplaceAll(b.md, hardBreak, cont))
	}
	return strings.Join(out, "\n")
}

// escapeLeading keeps paragraph text that starts like a list marker from
// being parsed as a list.
func escapeLeading(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+':
		return `\` + s
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + `\` + s[i:]
	}
	return s
}

var renderer = goldmark.New()

// ToHTML renders description markup to sanitized HTML. Raw HTML in the
// input never reaches the output.
func ToHTML(desc string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(ToMarkdown(desc)), &buf); err != nil {
		return "", fmt.Errorf("failed to render description: %w", err)
	}
	return buf.String(), nil
}

// ToPlain converts description markup to plain text: paragraphs separated
// by blank lines and list items prefixed with a bullet.
func ToPlain(desc string) string {
	blocks, err := parse(desc)
	if err != nil {
		return collapse(stripTags(desc))
	}

	var out []string
	prevItem := false
	for _, b := range blocks {
		isItem := b.kind == listItem
		if len(out) > 0 && !(isItem && prevItem) {
			out = append(out, "")
		}
		prevItem = isItem

		text := strings.ReplaceAll(b.plain, hardBreak, "\n")
		if isItem {
			marker := "• "
			if b.marker != "- " {
				marker = b.marker
			}
			text = strings.Repeat(" ", b.indent) + marker + text
		}
		out = append(out, text)
	}
	return strings.Join(out, "\n")
}
