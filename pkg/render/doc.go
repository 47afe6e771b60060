// Package render writes diff reports.
//
// # Formats
//
// Text formats mirror the two classic cratediff styles:
//
//   - [FormatSimple]: one aligned line per record, prefixed with "#" for a
//     direct change and "=", "+" or "-" for nested updated, added and
//     removed crates.
//   - [FormatVerbose]: a multi-line block per direct change with From/To
//     commits and a compare link, followed by nested Removed, Added and
//     Updated sections.
//
// Both are grouped by target by default. With [Options.Flat] the report is
// merged into a single deduplicated list (see report.Report.Flatten).
//
// Structured formats ([FormatJSON], [FormatYAML]) serialize the report as a
// tree of targets and diffs. Graph output (DOT, SVG) lives in the
// [nodelink] subpackage.
//
// # Links
//
// Records whose repository is on GitHub link to compare or commit pages
// when hashes are known. In comparison-link mode the builder skips those
// lookups and links point to diff.rs instead (see [DiffRSLink]).
//
// [nodelink]: github.com/matzehuels/cratediff/pkg/render/nodelink
package render
