package tripengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/views"
)

// BuildReport summarizes a static build.
type BuildReport struct {
	Posts      int
	Pages      int
	Duplicates []int64
}

// Build renders the whole site into Config.OutputDir: index.html, the
// not-found post.html, post/<id>.html per post, feed.xml, sitemap.xml and the
// public/ assets. The catalog is read fresh from the source; when it is
// unavailable an empty site is written.
func (a *App) Build(ctx context.Context) (BuildReport, error) {
	out := a.Config.OutputDir
	cat := content.LoadCatalogOrEmpty(a.source, a.Log.Named("catalog"))
	site := a.Config.View()
	links := views.StaticLinks()
	postLinks := links
	postLinks.Base = "../"

	if err := os.MkdirAll(filepath.Join(out, "post"), 0o755); err != nil {
		return BuildReport{}, fmt.Errorf("tripengine: build: %w", err)
	}

	report := BuildReport{Posts: cat.Len(), Duplicates: cat.DuplicateIDs()}
	written := make(map[int64]bool, cat.Len())
	var ids []int64
	type page struct {
		path string
		cmp  templ.Component
	}
	pages := []page{
		{"index.html", views.Home(site, links, cat, views.Collapsed)},
	}
	for _, p := range cat.Posts() {
		if written[p.ID] {
			continue
		}
		written[p.ID] = true
		ids = append(ids, p.ID)
		pages = append(pages, page{views.StaticPostPath(p.ID), views.PostPage(site, postLinks, p)})
	}
	pages = append(pages, page{"post.html", views.NotFound(site, links, ids)})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.BuildWorkers)
	for _, pg := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := pg.cmp.Render(gctx, &buf); err != nil {
				return fmt.Errorf("render %s: %w", pg.path, err)
			}
			if err := writeFile(filepath.Join(out, pg.path), buf.Bytes()); err != nil {
				return err
			}
			a.Metrics.PagesBuilt.Inc()
			return nil
		})
	}
	g.Go(func() error {
		return writeWith(filepath.Join(out, "feed.xml"), func(w io.Writer) error {
			return writeRSS(w, a.Config, cat.Posts())
		})
	})
	g.Go(func() error {
		return writeWith(filepath.Join(out, "sitemap.xml"), func(w io.Writer) error {
			return writeSitemap(w, a.Config, cat.Posts())
		})
	})
	g.Go(func() error {
		return a.copyAssets(filepath.Join(out, "public"))
	})
	if err := g.Wait(); err != nil {
		return BuildReport{}, fmt.Errorf("tripengine: build: %w", err)
	}

	report.Pages = len(pages)
	for _, id := range report.Duplicates {
		a.Log.Warnw("duplicate post id, only the first post gets a page", "id", id)
	}
	a.Log.Infow("site built", "dir", out, "posts", report.Posts, "pages", report.Pages)
	return report, nil
}

// copyAssets writes the embedded assets, then the user's static directory on
// top, into dir.
func (a *App) copyAssets(dir string) error {
	embedded, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return err
	}
	if err := copyTree(embedded, dir); err != nil {
		return fmt.Errorf("copy embedded assets: %w", err)
	}
	if _, err := os.Stat(a.Config.StaticDir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := copyTree(os.DirFS(a.Config.StaticDir), dir); err != nil {
		return fmt.Errorf("copy %s: %w", a.Config.StaticDir, err)
	}
	return nil
}

func copyTree(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		return writeFile(target, data)
	})
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeWith(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}
