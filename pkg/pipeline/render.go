package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/cratediff/pkg/observability"
	"github.com/matzehuels/cratediff/pkg/render"
	"github.com/matzehuels/cratediff/pkg/render/nodelink"
	"github.com/matzehuels/cratediff/pkg/report"
)

// Render writes rep to w in the given format.
func Render(ctx context.Context, w io.Writer, rep *report.Report, format string, opts render.Options) (err error) {
	if err := render.ValidateFormat(format); err != nil {
		return err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, format)
	defer func() { hooks.OnRenderComplete(ctx, format, time.Since(start), err) }()

	switch format {
	case render.FormatJSON:
		return render.JSON(w, rep, opts)
	case render.FormatYAML:
		return render.YAML(w, rep, opts)
	case render.FormatDOT:
		_, err = io.WriteString(w, nodelink.ToDOT(rep, nodelink.Options{ComparisonLinks: opts.ComparisonLinks}))
		return err
	case render.FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(rep, nodelink.Options{ComparisonLinks: opts.ComparisonLinks}))
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		_, err = w.Write(svg)
		return err
	default:
		return render.Text(w, rep, format, opts)
	}
}

// ContentType returns the MIME type of a format's output.
func ContentType(format string) string {
	switch format {
	case render.FormatJSON:
		return "application/json"
	case render.FormatYAML:
		return "application/yaml"
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}
