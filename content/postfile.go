package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNotSlug    = regexp.MustCompile(`[^a-z0-9-]`)
)

// FileSlug derives the file name stem of a saved post from its title:
// whitespace runs become "-", the result is lowercased and anything outside
// [a-z0-9-] is dropped.
func FileSlug(title string) string {
	s := reWhitespace.ReplaceAllString(strings.TrimSpace(title), "-")
	s = strings.ToLower(s)
	return reNotSlug.ReplaceAllString(s, "")
}

// EncodePostFile serializes p into the static data format: a title comment
// followed by the post JSON assigned to a variable named after the slug.
// It returns the file name to use for the download.
func EncodePostFile(p Post) (string, []byte, error) {
	slug := FileSlug(p.Title)
	if slug == "" {
		slug = fmt.Sprintf("post-%d", p.ID)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Days == nil {
		p.Days = []Day{}
	}

	var js bytes.Buffer
	enc := json.NewEncoder(&js)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(p); err != nil {
		return "", nil, fmt.Errorf("content.EncodePostFile: %w", err)
	}

	title := strings.Join(strings.Fields(p.Title), " ")
	var out bytes.Buffer
	fmt.Fprintf(&out, "// %s\n", title)
	fmt.Fprintf(&out, "const post_%s = %s;\n", strings.ReplaceAll(slug, "-", "_"), bytes.TrimRight(js.Bytes(), "\n"))
	return slug + ".js", out.Bytes(), nil
}

// DecodePostFile parses a post file written by EncodePostFile. Plain JSON
// objects are accepted too.
func DecodePostFile(data []byte) (Post, error) {
	body := bytes.TrimSpace(data)
	for bytes.HasPrefix(body, []byte("//")) {
		nl := bytes.IndexByte(body, '\n')
		if nl < 0 {
			body = nil
			break
		}
		body = bytes.TrimSpace(body[nl+1:])
	}
	if len(body) == 0 {
		return Post{}, fmt.Errorf("post file is empty")
	}
	if body[0] != '{' {
		eq := bytes.IndexByte(body, '=')
		if eq < 0 {
			return Post{}, fmt.Errorf("post file has no assignment")
		}
		body = bytes.TrimSpace(body[eq+1:])
	}
	body = bytes.TrimSpace(bytes.TrimSuffix(body, []byte(";")))

	var p Post
	if err := json.Unmarshal(body, &p); err != nil {
		return Post{}, fmt.Errorf("%w: decode post: %v", ErrDataUnavailable, err)
	}
	if err := p.CheckCoords(); err != nil {
		return Post{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}
