package content

import (
	"fmt"

	"go.uber.org/zap"
)

// Source supplies the posts of a catalog. DirSource reads them from a data
// directory; tests pass a StaticSource.
type Source interface {
	LoadPosts() ([]Post, error)
}

// StaticSource is an in-memory Source.
type StaticSource []Post

// LoadPosts implements Source.
func (s StaticSource) LoadPosts() ([]Post, error) {
	out := make([]Post, len(s))
	copy(out, s)
	return out, nil
}

// Catalog is the ordered, read-only set of published posts.
type Catalog struct {
	posts []Post
}

// NewCatalog wraps posts in a Catalog, keeping their order.
func NewCatalog(posts []Post) *Catalog {
	if posts == nil {
		posts = []Post{}
	}
	return &Catalog{posts: posts}
}

// LoadCatalog loads every post from src. Any failure of the source is
// reported as ErrDataUnavailable.
func LoadCatalog(src Source) (*Catalog, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no catalog source configured", ErrDataUnavailable)
	}
	posts, err := src.LoadPosts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	for _, p := range posts {
		if err := p.CheckCoords(); err != nil {
			return nil, fmt.Errorf("%w: post %d: %v", ErrDataUnavailable, p.ID, err)
		}
	}
	return NewCatalog(posts), nil
}

// LoadCatalogOrEmpty loads the catalog and, on failure, logs a warning and
// returns an empty catalog so views can still render their shell.
func LoadCatalogOrEmpty(src Source, log *zap.SugaredLogger) *Catalog {
	c, err := LoadCatalog(src)
	if err != nil {
		if log != nil {
			log.Warnw("catalog unavailable, rendering empty site", "error", err)
		}
		return NewCatalog(nil)
	}
	if log != nil {
		log.Infow("catalog loaded", "posts", c.Len())
		for _, id := range c.DuplicateIDs() {
			log.Warnw("duplicate post id, detail lookup returns the first", "id", id)
		}
	}
	return c
}

// Posts returns the posts in catalog order. The slice must not be modified.
func (c *Catalog) Posts() []Post {
	return c.posts
}

// Len returns the number of posts.
func (c *Catalog) Len() int {
	return len(c.posts)
}

// FindByID returns the first post with id. The catalog is small, so this is a
// linear scan.
func (c *Catalog) FindByID(id int64) (Post, error) {
	for _, p := range c.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
}

// Tags returns the union of all post tags in order of first occurrence.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range c.posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// PostsByTag returns the posts carrying tag, in catalog order.
func (c *Catalog) PostsByTag(tag string) []Post {
	var out []Post
	for _, p := range c.posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// DuplicateIDs lists ids that appear on more than one post.
func (c *Catalog) DuplicateIDs() []int64 {
	count := make(map[int64]int)
	var dups []int64
	for _, p := range c.posts {
		count[p.ID]++
		if count[p.ID] == 2 {
			dups = append(dups, p.ID)
		}
	}
	return dups
}
