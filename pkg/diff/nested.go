package diff

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/workspace"
)

// Changes are the nested differences between two versions of a crate.
type Changes struct {
	Removed []Record
	Added   []Record
	Updated []Record
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Removed) == 0 && len(c.Added) == 0 && len(c.Updated) == 0
}

// Classify matches two nested package sets by crate name. Every name gets
// at most one outcome.
//
// Versions present on both sides are unchanged. Of the versions left on each
// side only the highest counts: a name with leftovers on both sides is
// updated from the highest old to the highest new version, otherwise it is
// removed or added. A graph going from {syn 1.0.109, syn 2.0.50} to
// {syn 2.0.60} thus yields a single update 2.0.50 -> 2.0.60. Renames show up
// as a removal plus an addition.
//
// Records carry versions only; names are ordered by first appearance, "from"
// before "to".
func Classify(from, to []crate.Identity) Changes {
	var names []string
	sides := map[string]*[2][]*semver.Version{}
	collect := func(set []crate.Identity, side int) {
		for _, id := range set {
			vs, ok := sides[id.Name]
			if !ok {
				vs = new([2][]*semver.Version)
				sides[id.Name] = vs
				names = append(names, id.Name)
			}
			if !containsVersion(vs[side], id.Version) {
				vs[side] = append(vs[side], id.Version)
			}
		}
	}
	collect(from, 0)
	collect(to, 1)

	var c Changes
	for _, name := range names {
		vs := sides[name]
		old := highest(without(vs[0], vs[1]))
		cur := highest(without(vs[1], vs[0]))
		switch {
		case old != nil && cur != nil:
			c.Updated = append(c.Updated, Record{Name: name, From: old, To: cur})
		case old != nil:
			c.Removed = append(c.Removed, Record{Name: name, From: old})
		case cur != nil:
			c.Added = append(c.Added, Record{Name: name, To: cur})
		}
	}
	return c
}

func containsVersion(vs []*semver.Version, v *semver.Version) bool {
	for _, x := range vs {
		if crate.SameVersion(x, v) {
			return true
		}
	}
	return false
}

// without returns the versions of vs missing from other.
func without(vs, other []*semver.Version) []*semver.Version {
	var out []*semver.Version
	for _, v := range vs {
		if !containsVersion(other, v) {
			out = append(out, v)
		}
	}
	return out
}

func highest(vs []*semver.Version) *semver.Version {
	var top *semver.Version
	for _, v := range vs {
		if top == nil || crate.CompareVersions(v, top) > 0 {
			top = v
		}
	}
	return top
}

// Nested computes the nested changes for rec: the transitive dependency
// sets of rec.From and rec.To are fetched and classified, then enriched with
// hashes and repositories unless comparison links are enabled. A set that
// cannot be fetched counts as empty.
func (b *Builder) Nested(ctx context.Context, rec Record) Changes {
	c := Classify(b.nestedSet(ctx, rec.Name, rec.From), b.nestedSet(ctx, rec.Name, rec.To))
	if b.opts.ComparisonLinks {
		return c
	}

	for i := range c.Removed {
		r := &c.Removed[i]
		r.FromHash = b.commitHash(ctx, r.Name, r.From)
		r.Repository = b.repository(ctx, r.Name, r.From)
	}
	for i := range c.Added {
		r := &c.Added[i]
		r.ToHash = b.commitHash(ctx, r.Name, r.To)
		r.Repository = b.repository(ctx, r.Name, r.To)
	}
	for i := range c.Updated {
		r := &c.Updated[i]
		r.FromHash = b.commitHash(ctx, r.Name, r.From)
		r.ToHash = b.commitHash(ctx, r.Name, r.To)
		r.Repository = b.repository(ctx, r.Name, r.From)
	}
	return c
}

func (b *Builder) nestedSet(ctx context.Context, name string, v *semver.Version) []crate.Identity {
	if v == nil {
		return nil
	}
	if b.metadata == nil {
		b.logger.Warn("no metadata provider for nested dependencies", "crate", name)
		return nil
	}

	lctx, cancel := b.lookupContext(ctx)
	path, err := b.registry.SourcePath(lctx, name, v)
	cancel()
	if err != nil {
		b.logger.Warn("cannot locate crate sources", "crate", name, "version", v.Original(), "err", err)
		return nil
	}

	lctx, cancel = b.lookupContext(ctx)
	g, err := b.metadata.Resolve(lctx, path)
	cancel()
	if err != nil {
		b.logger.Warn("cannot get cargo metadata", "crate", name, "version", v.Original(), "err", err)
		return nil
	}
	return workspace.NestedPackages(g, b.logger)
}
