package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/viewer.html.tmpl
var templateFS embed.FS

var viewerTmpl = template.Must(template.ParseFS(templateFS, "templates/viewer.html.tmpl"))

// Viewer configures the static HTML page.
type Viewer struct {
	Title       string
	GeoJSONFile string // fetched relative to the HTML file
	Summary     string // one line shown above the map
}

// RenderViewer renders the viewer page.
func RenderViewer(v Viewer) ([]byte, error) {
	if v.Title == "" {
		v.Title = "Route Planner - Visualization"
	}
	if v.GeoJSONFile == "" {
		v.GeoJSONFile = "route.geojson"
	}
	var buf bytes.Buffer
	if err := viewerTmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render viewer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteViewerHTML writes a Leaflet page that loads v.GeoJSONFile.
func WriteViewerHTML(path string, v Viewer) error {
	data, err := RenderViewer(v)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
