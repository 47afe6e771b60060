package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/diff"
	"github.com/matzehuels/cratediff/pkg/render"
	"github.com/matzehuels/cratediff/pkg/report"
)

// Options configures diff graph rendering.
type Options struct {
	// ComparisonLinks attaches diff.rs links instead of repository links.
	ComparisonLinks bool
}

var kindColors = map[diff.Kind]string{
	diff.KindUpdated: "lightgoldenrod1",
	diff.KindAdded:   "palegreen",
	diff.KindRemoved: "mistyrose",
	diff.KindUnknown: "white",
}

// ToDOT converts a report to Graphviz DOT. Each target is a root node;
// direct changes hang below their target and nested changes below the
// direct change that caused them. Nodes are filled by kind and carry a
// URL when a link is known.
func ToDOT(rep *report.Report, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for _, t := range rep.Targets {
		if len(t.Diffs) == 0 {
			continue
		}
		tid := "target:" + t.Name
		fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fillcolor=lightblue];\n", tid, targetLabel(t.Name))

		for _, d := range t.Diffs {
			did := tid + "/" + d.Diff.Name + "@" + versionPair(d.Diff)
			writeNode(&buf, did, d.Diff, opts, true)
			fmt.Fprintf(&buf, "  %q -> %q;\n", tid, did)

			for _, group := range [][]diff.Record{d.Updated, d.Added, d.Removed} {
				for _, r := range group {
					nid := did + "/" + r.Kind().String() + "/" + r.Name + "@" + versionPair(r)
					writeNode(&buf, nid, r, opts, false)
					fmt.Fprintf(&buf, "  %q -> %q [color=gray];\n", did, nid)
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func targetLabel(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

func versionPair(r diff.Record) string {
	return crate.FormatVersion(r.From) + ".." + crate.FormatVersion(r.To)
}

func fmtLabel(r diff.Record) string {
	from, to := crate.FormatVersion(r.From), crate.FormatVersion(r.To)
	switch r.Kind() {
	case diff.KindUpdated:
		return r.Name + "\n" + from + " → " + to
	case diff.KindAdded:
		return r.Name + "\n+ " + to
	case diff.KindRemoved:
		return r.Name + "\n- " + from
	default:
		return r.Name
	}
}

func writeNode(buf *bytes.Buffer, id string, r diff.Record, opts Options, direct bool) {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(r)),
		fmt.Sprintf("fillcolor=%q", kindColors[r.Kind()]),
	}
	if direct {
		attrs = append(attrs, "penwidth=2")
	}
	if link := render.Link(r, opts.ComparisonLinks); link != "" {
		attrs = append(attrs, fmt.Sprintf("URL=%q", link), `target="_blank"`)
	}
	fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
}

// RenderSVG renders DOT source to SVG in-process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// plain viewBox so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
