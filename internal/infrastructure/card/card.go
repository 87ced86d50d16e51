// Package card renders the shareable wallet card markup.
package card

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"trenchcard/internal/app/presenter"
	"trenchcard/internal/pkg/utils"
)

//go:embed templates/card.html.tmpl
var templateFS embed.FS

const (
	MaskPlaceholder = "***"
	PositiveColor   = "#00ff66"
	NegativeColor   = "#ff0044"
)

// Options controls a single render.
type Options struct {
	HideBalance bool
	GeneratedAt time.Time
	Location    *time.Location
}

type cardData struct {
	View        presenter.WalletSnapshotView
	GeneratedAt string
	Positive    template.CSS
	Negative    template.CSS
}

// Builder executes the card template. It is safe for concurrent use.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder parses the embedded template.
func NewBuilder() (*Builder, error) {
	base := template.New("card.html.tmpl").Funcs(template.FuncMap{
		"fixed2": func(v float64) string { return utils.Fixed(v, 2) },
	})
	// mask is rebound per render; this placeholder only satisfies parsing
	base = base.Funcs(template.FuncMap{"mask": func(s string) string { return s }})
	tmpl, err := base.ParseFS(templateFS, "templates/card.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse card template: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// Build returns the self-contained HTML document for view. With HideBalance
// the total value and every asset amount and value are replaced by
// MaskPlaceholder.
func (b *Builder) Build(view presenter.WalletSnapshotView, opts Options) ([]byte, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	tmpl, err := b.tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to clone card template: %w", err)
	}
	tmpl.Funcs(template.FuncMap{
		"mask": func(s string) string {
			if opts.HideBalance {
				return MaskPlaceholder
			}
			return s
		},
	})

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, cardData{
		View:        view,
		GeneratedAt: generated.In(loc).Format(presenter.TimestampLayout),
		Positive:    PositiveColor,
		Negative:    NegativeColor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute card template: %w", err)
	}
	return buf.Bytes(), nil
}
