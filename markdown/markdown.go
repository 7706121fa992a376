// Package markdown renders the small Markdown dialect used to write location
// stories in the authoring tool. It covers what the story toolbar offers:
// second and third level headings, bold, italic, underline, ordered and
// bullet lists, block quotes and links.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reUnderline = regexp.MustCompile(`\+\+(.+?)\+\+`)
	reItalic    = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicU   = regexp.MustCompile(`(^|\s)_([^_]+)_`)
	reLink      = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrdered   = regexp.MustCompile(`^\d+[.)]\s`)
)

type block int

const (
	blockNone block = iota
	blockPara
	blockBullet
	blockOrdered
	blockQuote
)

var closeTag = map[block]string{
	blockPara:    "</p>",
	blockBullet:  "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, md)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// ToHTML returns the HTML for md.
func ToHTML(md string) string {
	var buf bytes.Buffer
	RenderMarkdown(&buf, md)
	return buf.String()
}

// RenderMarkdown writes the HTML representation of md to buf. Raw HTML in the
// source is escaped.
func RenderMarkdown(buf *bytes.Buffer, md string) {
	open := blockNone
	enter := func(b block, tag string) bool {
		if open == b {
			return false
		}
		buf.WriteString(closeTag[open])
		open = b
		if tag != "" {
			buf.WriteString(tag)
		}
		return true
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			enter(blockNone, "")
		case strings.HasPrefix(trimmed, "### "):
			enter(blockNone, "")
			buf.WriteString("<h3>" + FormatInline(strings.TrimSpace(trimmed[4:])) + "</h3>")
		case strings.HasPrefix(trimmed, "## "):
			enter(blockNone, "")
			buf.WriteString("<h2>" + FormatInline(strings.TrimSpace(trimmed[3:])) + "</h2>")
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			enter(blockBullet, "<ul>")
			buf.WriteString("<li>" + FormatInline(strings.TrimSpace(trimmed[2:])) + "</li>")
		case reOrdered.MatchString(trimmed):
			enter(blockOrdered, "<ol>")
			item := reOrdered.ReplaceAllString(trimmed, "")
			buf.WriteString("<li>" + FormatInline(strings.TrimSpace(item)) + "</li>")
		case trimmed == ">" || strings.HasPrefix(trimmed, "> "):
			if !enter(blockQuote, "<blockquote>") {
				buf.WriteString("<br/>")
			}
			buf.WriteString(FormatInline(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))))
		default:
			if !enter(blockPara, "<p>") {
				buf.WriteString("<br/>")
			}
			buf.WriteString(FormatInline(trimmed))
		}
	}
	enter(blockNone, "")
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline escapes s and applies links, bold, underline and italic.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + match[1] + `</a>`
	})
	return ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reUnderline.ReplaceAllString(seg, "<u>$1</u>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicU.ReplaceAllString(seg, "$1<em>$2</em>")
		return seg
	})
}

// SafeURL validates raw for use in an href attribute. Relative paths,
// fragments and http, https, mailto or tel URLs pass; anything else yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
