package render

import (
	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/diff"
	"github.com/matzehuels/cratediff/pkg/report"
)

const (
	prefixDirect  = "#"
	prefixUpdated = "="
	prefixAdded   = "+"
	prefixRemoved = "-"

	undefined = "<undefined>"
	unknown   = "<unknown>"
)

// widths holds the column widths of one aligned block.
type widths struct{ name, from, to int }

func (w *widths) fit(recs ...diff.Record) {
	for _, r := range recs {
		w.name = max(w.name, len(r.Name))
		w.from = max(w.from, len(crate.FormatVersion(r.From)))
		w.to = max(w.to, len(crate.FormatVersion(r.To)))
	}
}

func kindPrefix(r diff.Record) string {
	switch r.Kind() {
	case diff.KindUpdated:
		return prefixUpdated
	case diff.KindAdded:
		return prefixAdded
	case diff.KindRemoved:
		return prefixRemoved
	default:
		return prefixDirect
	}
}

func (p *printer) simple(rep *report.Report) {
	if p.opts.Flat {
		p.simpleFlat(rep)
		return
	}
	first := true
	for _, t := range rep.Targets {
		if len(t.Diffs) == 0 {
			continue
		}
		if !first {
			p.line("")
		}
		first = false
		if t.Name != "" {
			p.line(p.styles.heading.Render(": " + t.Name))
		}

		var w widths
		for _, d := range t.Diffs {
			w.fit(d.Diff)
			w.fit(d.Updated...)
			w.fit(d.Added...)
			w.fit(d.Removed...)
		}
		for _, d := range t.Diffs {
			p.simpleLine(prefixDirect, d.Diff, w)
			for _, r := range d.Updated {
				p.simpleLine(prefixUpdated, r, w)
			}
			for _, r := range d.Added {
				p.simpleLine(prefixAdded, r, w)
			}
			for _, r := range d.Removed {
				p.simpleLine(prefixRemoved, r, w)
			}
		}
	}
}

// simpleFlat prints the merged record list. Direct changes keep the "#"
// prefix; nested ones are prefixed by kind.
func (p *printer) simpleFlat(rep *report.Report) {
	direct := make(map[diff.Key]bool)
	for _, t := range rep.Targets {
		for _, d := range t.Diffs {
			direct[d.Diff.Key()] = true
		}
	}
	recs := rep.Flatten()
	var w widths
	w.fit(recs...)
	for _, r := range recs {
		prefix := kindPrefix(r)
		if direct[r.Key()] {
			prefix = prefixDirect
		}
		p.simpleLine(prefix, r, w)
	}
}

func (p *printer) simpleLine(prefix string, r diff.Record, w widths) {
	p.printf("%s %-*s %-*s %-*s %s\n",
		p.styles.prefix(prefix),
		w.name, r.Name,
		w.from, orDefault(crate.FormatVersion(r.From), undefined),
		w.to, orDefault(crate.FormatVersion(r.To), undefined),
		p.simpleTail(r))
}

func (p *printer) simpleTail(r diff.Record) string {
	if link := Link(r, p.opts.ComparisonLinks); link != "" {
		return p.styles.link.Render(link)
	}
	switch r.Kind() {
	case diff.KindUpdated:
		return orDefault(r.Repository, undefined)
	case diff.KindAdded:
		return orDefault(r.Repository, undefined) + " " + orDefault(r.ToHash, undefined)
	case diff.KindRemoved:
		return orDefault(r.Repository, undefined) + " " + orDefault(r.FromHash, undefined)
	default:
		return orDefault(r.Repository, unknown)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
