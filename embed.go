package tripengine

import "embed"

// EmbeddedAssets contains the static assets shipped with every site:
// tripmap.js (replays map specs with maplibre) and style.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
