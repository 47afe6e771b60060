package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/diff"
	"github.com/matzehuels/cratediff/pkg/report"
)

// Document is the structured form of a report written by [JSON] and [YAML].
type Document struct {
	RunID     string       `json:"run_id" yaml:"run_id"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	UpToDate  bool         `json:"up_to_date" yaml:"up_to_date"`
	Targets   []TargetDoc  `json:"targets,omitempty" yaml:"targets,omitempty"`
	Records   []RecordDoc  `json:"records,omitempty" yaml:"records,omitempty"`
	Stats     report.Stats `json:"stats" yaml:"stats"`
}

// TargetDoc is one target of a grouped document. The default target has
// an empty name.
type TargetDoc struct {
	Name  string    `json:"name" yaml:"name"`
	Diffs []DiffDoc `json:"diffs" yaml:"diffs"`
}

// DiffDoc is a direct change with its nested changes.
type DiffDoc struct {
	RecordDoc `yaml:",inline"`
	Removed   []RecordDoc `json:"removed,omitempty" yaml:"removed,omitempty"`
	Added     []RecordDoc `json:"added,omitempty" yaml:"added,omitempty"`
	Updated   []RecordDoc `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// RecordDoc is one record. Absent fields are omitted.
type RecordDoc struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	From       string `json:"from,omitempty" yaml:"from,omitempty"`
	FromHash   string `json:"from_hash,omitempty" yaml:"from_hash,omitempty"`
	To         string `json:"to,omitempty" yaml:"to,omitempty"`
	ToHash     string `json:"to_hash,omitempty" yaml:"to_hash,omitempty"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	Link       string `json:"link,omitempty" yaml:"link,omitempty"`
}

// NewDocument converts rep. Flat documents carry Records instead of
// Targets.
func NewDocument(rep *report.Report, opts Options) Document {
	doc := Document{
		RunID:     rep.RunID,
		CreatedAt: rep.CreatedAt,
		UpToDate:  rep.Empty(),
		Stats:     rep.Stats(),
	}
	if opts.Flat {
		for _, r := range rep.Flatten() {
			doc.Records = append(doc.Records, recordDoc(r, opts))
		}
		return doc
	}
	for _, t := range rep.Targets {
		td := TargetDoc{Name: t.Name, Diffs: []DiffDoc{}}
		for _, d := range t.Diffs {
			td.Diffs = append(td.Diffs, DiffDoc{
				RecordDoc: recordDoc(d.Diff, opts),
				Removed:   recordDocs(d.Removed, opts),
				Added:     recordDocs(d.Added, opts),
				Updated:   recordDocs(d.Updated, opts),
			})
		}
		doc.Targets = append(doc.Targets, td)
	}
	return doc
}

func recordDoc(r diff.Record, opts Options) RecordDoc {
	return RecordDoc{
		Name:       r.Name,
		Kind:       r.Kind().String(),
		From:       crate.FormatVersion(r.From),
		FromHash:   r.FromHash,
		To:         crate.FormatVersion(r.To),
		ToHash:     r.ToHash,
		Repository: r.Repository,
		Link:       Link(r, opts.ComparisonLinks),
	}
}

func recordDocs(recs []diff.Record, opts Options) []RecordDoc {
	var out []RecordDoc
	for _, r := range recs {
		out = append(out, recordDoc(r, opts))
	}
	return out
}

// JSON writes rep as indented JSON.
func JSON(w io.Writer, rep *report.Report, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(rep, opts)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes rep as YAML.
func YAML(w io.Writer, rep *report.Report, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(rep, opts)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
