package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	SiteName    string
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <directory>",
		Short: "Create a new site with a sample trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0])
		},
	}
}

func runInit(cmd *cobra.Command, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	out := cmd.OutOrStdout()
	name := filepath.Base(dir)
	data := scaffoldData{ProjectName: name, SiteName: toTitle(name)}

	fmt.Fprintf(out, "Creating new tripengine site: %s\n\n", dir)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		raw, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	postsDir := filepath.Join(dir, "data", "posts")
	if err := writeSamplePost(postsDir); err != nil {
		return err
	}
	fmt.Fprintf(out, "  created %s\n", filepath.Join(postsDir, content.IndexFile))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  tripengine serve    # preview and write new trips at /editor")
	fmt.Fprintln(out, "  tripengine build    # render the static site into dist/")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Saved trips download as .js files: copy them into data/posts and list them in %s.\n", content.IndexFile)
	return nil
}

// samplePost is the trip every new site starts with.
func samplePost() content.Post {
	return content.Post{
		ID:        1704067200000,
		Title:     "Hokkaido Trip",
		Date:      content.FormatDateRange("2024-01-01", "2024-01-03"),
		Thumbnail: content.DefaultThumbnail,
		Tags:      []string{"Japan"},
		Days: []content.Day{
			{Title: content.DefaultDayTitle(0), Locations: []content.Location{
				{
					Name:        "Sapporo",
					Coords:      content.NewCoords(141.3545, 43.0618),
					Description: "Snow festival and ramen alley",
					Content:     "<p>Start here: replace this trip with your own.</p>",
				},
			}},
			{Title: content.DefaultDayTitle(1), Locations: []content.Location{
				{Name: "Lake Toya", Coords: content.NewCoords(140.8533, 42.6008), Description: "Caldera lake"},
			}},
		},
	}
}

func writeSamplePost(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name, data, err := content.EncodePostFile(samplePost())
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return err
	}
	idx, err := json.MarshalIndent(content.Index{Posts: []string{name}}, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, content.IndexFile), append(idx, '\n'), 0o644)
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-trips" -> "My Trips"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
