package render

import (
	"strings"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/diff"
	"github.com/matzehuels/cratediff/pkg/report"
)

const (
	unknownCommit = "<unknown-commit>"
	unknownRepo   = "<unknown-repository>"
)

func (p *printer) verbose(rep *report.Report) {
	if p.opts.Flat {
		recs := rep.Flatten()
		var w widths
		w.fit(recs...)
		p.line(p.styles.heading.Render("Dependencies:"))
		for _, r := range recs {
			p.verboseRecord(r, 1, w)
		}
		return
	}

	for _, t := range rep.Targets {
		if len(t.Diffs) == 0 {
			continue
		}
		if t.Name == "" {
			p.line(p.styles.heading.Render("Default dependencies:"))
		} else {
			p.line(p.styles.heading.Render(t.Name + " dependencies:"))
		}
		for _, d := range t.Diffs {
			p.verboseRecord(d.Diff, 1, widths{})
			if !d.HasNested() {
				continue
			}
			p.line("    Nested dependency diffs:")
			p.verboseSection("Removed", d.Removed)
			p.verboseSection("Added", d.Added)
			p.verboseSection("Updated", d.Updated)
		}
	}
}

func (p *printer) verboseSection(title string, recs []diff.Record) {
	if len(recs) == 0 {
		return
	}
	var w widths
	w.fit(recs...)
	p.printf("      %s:\n", title)
	for _, r := range recs {
		p.verboseRecord(r, 4, w)
	}
}

func (p *printer) verboseRecord(r diff.Record, indent int, w widths) {
	ind := strings.Repeat("  ", indent)
	from, to := crate.FormatVersion(r.From), crate.FormatVersion(r.To)

	switch r.Kind() {
	case diff.KindUpdated:
		change := "downgraded"
		if r.Upgrade() {
			change = "upgraded"
		}
		p.printf("%s%s: %s\n", ind, p.styles.name.Render(r.Name), change)
		switch {
		case p.opts.ComparisonLinks:
			p.printf("%s  From: %s\n", ind, from)
			p.printf("%s  To:   %s\n", ind, to)
			p.printf("%s  Diff: %s\n", ind, p.styles.link.Render(DiffRSLink(r)))
		case CompareLink(r) != "":
			p.printf("%s  From: %s %s\n", ind, from, p.styles.link.Render(CommitLink(r.Repository, r.FromHash)))
			p.printf("%s  To:   %s %s\n", ind, to, p.styles.link.Render(CommitLink(r.Repository, r.ToHash)))
			p.printf("%s  Diff: %s\n", ind, p.styles.link.Render(CompareLink(r)))
		default:
			p.printf("%s  From: %s %s\n", ind, from, orDefault(r.FromHash, unknownCommit))
			p.printf("%s  To:   %s %s\n", ind, to, orDefault(r.ToHash, unknownCommit))
			p.printf("%s  Repo: %s\n", ind, orDefault(r.Repository, unknownRepo))
		}
	case diff.KindRemoved:
		p.printf("%s%-*s %-*s %s\n", ind, w.name, r.Name, w.from, from, p.verboseTail(r, r.FromHash))
	case diff.KindAdded:
		p.printf("%s%-*s %-*s %s\n", ind, w.name, r.Name, w.to, to, p.verboseTail(r, r.ToHash))
	default:
		p.printf("%s%-*s %s\n", ind, w.name, r.Name, orDefault(r.Repository, unknownRepo))
	}
}

func (p *printer) verboseTail(r diff.Record, hash string) string {
	if link := Link(r, p.opts.ComparisonLinks); link != "" {
		return p.styles.link.Render(link)
	}
	return orDefault(r.Repository, unknownRepo) + " " + orDefault(hash, unknownCommit)
}
