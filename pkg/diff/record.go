package diff

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/crate"
)

// Kind classifies a record by which versions it carries.
type Kind int

const (
	KindUnknown Kind = iota // neither version known
	KindUpdated             // both versions known and different
	KindAdded               // only the "to" version
	KindRemoved             // only the "from" version
)

func (k Kind) String() string {
	switch k {
	case KindUpdated:
		return "updated"
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Record is the change of one crate between two states. Absent versions
// are nil; absent hashes and repository are empty strings.
type Record struct {
	Name       string
	From       *semver.Version
	FromHash   string
	To         *semver.Version
	ToHash     string
	Repository string
}

// Resolve is the single emission rule shared by every request mode: it
// builds the record for name moving from -> to, and refuses (false) when
// both versions are known and equal.
func Resolve(name string, from, to *semver.Version) (Record, bool) {
	if from != nil && to != nil && crate.SameVersion(from, to) {
		return Record{}, false
	}
	return Record{Name: name, From: from, To: to}, true
}

// Kind reports which versions r carries.
func (r Record) Kind() Kind {
	switch {
	case r.From != nil && r.To != nil:
		return KindUpdated
	case r.To != nil:
		return KindAdded
	case r.From != nil:
		return KindRemoved
	default:
		return KindUnknown
	}
}

// Upgrade reports whether an updated record moves to a newer version.
func (r Record) Upgrade() bool {
	return r.Kind() == KindUpdated && crate.CompareVersions(r.From, r.To) < 0
}

// Key is a comparable form of a record covering every field.
type Key struct {
	Name, From, FromHash, To, ToHash, Repository string
}

// Key returns the structural identity of r.
func (r Record) Key() Key {
	return Key{
		Name:       r.Name,
		From:       versionKey(r.From),
		FromHash:   r.FromHash,
		To:         versionKey(r.To),
		ToHash:     r.ToHash,
		Repository: r.Repository,
	}
}

// Equal reports full structural equality.
func (r Record) Equal(o Record) bool { return r.Key() == o.Key() }

// Compare orders records by (name, from, to); nil versions first.
func Compare(a, b Record) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := crate.CompareVersions(a.From, b.From); c != 0 {
		return c
	}
	return crate.CompareVersions(a.To, b.To)
}

// Sort sorts records in place by Compare. The sort is stable so records
// that differ only in hashes keep their relative order.
func Sort(records []Record) {
	slices.SortStableFunc(records, Compare)
}

func versionKey(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.String()
}
