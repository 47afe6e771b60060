// Package nodelink renders diff reports as node-link diagrams.
//
// Convert a report to DOT, then render it to SVG:
//
//	dot := nodelink.ToDOT(rep, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Targets are folder-shaped roots. Direct changes have a thick outline;
// nested changes hang off them in gray. Fill colors mark the change kind:
// yellow for updated, green for added, red for removed.
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; no system Graphviz install is needed.
package nodelink
