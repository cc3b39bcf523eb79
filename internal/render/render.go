// Package render draws the refresh summary artifact: a PNG with the total
// country count and the top countries by estimated GDP. Rendering is a
// best-effort side effect of a refresh; callers log failures and move on.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	imageWidth  = 800
	imageHeight = 600
)

// Entry is one (name, estimated GDP) pair, already sorted descending.
type Entry struct {
	Name string
	GDP  float64
}

// Renderer writes summary images to a fixed artifact path, overwriting the
// previous one.
type Renderer struct {
	path    string
	regular *truetype.Font
	bold    *truetype.Font
}

// New builds a renderer targeting path. The embedded Go fonts avoid any
// dependence on system font files.
func New(path string) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Renderer{path: path, regular: regular, bold: bold}, nil
}

// Path returns the artifact location the renderer writes to.
func (r *Renderer) Path() string {
	return r.path
}

// Render draws the summary and writes it to the artifact path.
func (r *Renderer) Render(totalCountries int, top []Entry, refreshedAt time.Time) error {
	dc := gg.NewContext(imageWidth, imageHeight)

	// Vertical blue gradient background.
	gradient := gg.NewLinearGradient(0, 0, 0, imageHeight)
	gradient.AddColorStop(0, colorHex("#1e3a8a"))
	gradient.AddColorStop(1, colorHex("#3b82f6"))
	dc.SetFillStyle(gradient)
	dc.DrawRectangle(0, 0, imageWidth, imageHeight)
	dc.Fill()

	dc.SetHexColor("#ffffff")
	dc.SetFontFace(r.face(r.bold, 36))
	dc.DrawStringAnchored("Country Statistics Summary", imageWidth/2, 60, 0.5, 0.5)

	dc.SetFontFace(r.face(r.bold, 24))
	dc.DrawStringAnchored(fmt.Sprintf("Total Countries: %d", totalCountries), imageWidth/2, 120, 0.5, 0.5)

	dc.SetLineWidth(2)
	dc.DrawLine(50, 150, imageWidth-50, 150)
	dc.Stroke()

	dc.SetFontFace(r.face(r.bold, 28))
	dc.DrawStringAnchored("Top 5 Countries by GDP", imageWidth/2, 200, 0.5, 0.5)

	dc.SetFontFace(r.face(r.regular, 20))
	y := 250.0
	for i, entry := range top {
		dc.SetRGBA(1, 1, 1, 0.1)
		dc.DrawRectangle(50, y-25, imageWidth-100, 40)
		dc.Fill()

		dc.SetHexColor("#ffffff")
		text := fmt.Sprintf("%d. %s - $%s", i+1, entry.Name, formatGDP(entry.GDP))
		dc.DrawStringAnchored(text, 70, y, 0, 0.5)
		y += 60
	}

	dc.SetFontFace(r.face(r.regular, 16))
	dc.SetHexColor("#e5e7eb")
	footer := fmt.Sprintf("Last Refreshed: %s", refreshedAt.UTC().Format("January 2, 2006 15:04:05 MST"))
	dc.DrawStringAnchored(footer, imageWidth/2, imageHeight-30, 0.5, 0.5)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	if err := dc.SavePNG(r.path); err != nil {
		return fmt.Errorf("write summary image: %w", err)
	}
	return nil
}

func (r *Renderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

func colorHex(s string) color.Color {
	var r, g, b uint8
	_, _ = fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// formatGDP renders a GDP figure with T/B/M magnitude suffixes.
func formatGDP(gdp float64) string {
	switch {
	case gdp >= 1e12:
		return fmt.Sprintf("%.2fT", gdp/1e12)
	case gdp >= 1e9:
		return fmt.Sprintf("%.2fB", gdp/1e9)
	case gdp >= 1e6:
		return fmt.Sprintf("%.2fM", gdp/1e6)
	default:
		return fmt.Sprintf("%.2f", gdp)
	}
}
