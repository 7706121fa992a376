package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// IndexFile names the manually maintained list of post files inside a data
// directory.
const IndexFile = "index.json"

// Index is the content of IndexFile. Posts lists file names relative to the
// data directory, in display order.
type Index struct {
	Posts []string `json:"posts"`
}

// DirSource reads a catalog from a data directory holding IndexFile and the
// post files it lists.
type DirSource struct {
	FS fs.FS
}

// NewDirSource returns a DirSource rooted at dir on the local filesystem.
func NewDirSource(dir string) DirSource {
	return DirSource{FS: os.DirFS(dir)}
}

// LoadPosts implements Source.
func (s DirSource) LoadPosts() ([]Post, error) {
	if s.FS == nil {
		return nil, fmt.Errorf("data directory not set")
	}
	raw, err := fs.ReadFile(s.FS, IndexFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IndexFile, err)
	}
	var idx Index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", IndexFile, err)
	}

	posts := make([]Post, 0, len(idx.Posts))
	for _, name := range idx.Posts {
		name = path.Clean(name)
		data, err := fs.ReadFile(s.FS, name)
		if err != nil {
			return nil, fmt.Errorf("read post %s: %w", name, err)
		}
		p, err := DecodePostFile(data)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", name, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}
