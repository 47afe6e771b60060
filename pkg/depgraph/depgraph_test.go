package depgraph

import (
	"errors"
	"testing"
)

func TestGraphBuild(t *testing.T) {
	g := New()
	for _, id := range []string{"app", "serde", "serde_derive"} {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	if err := g.AddEdge("app", "serde"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("serde", "serde_derive"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("app", "serde"); err != nil {
		t.Errorf("duplicate edge should be ignored: %v", err)
	}
	if err := g.AddMember("app"); err != nil {
		t.Fatal(err)
	}

	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("counts = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if got := g.Dependencies("app"); len(got) != 1 || got[0] != "serde" {
		t.Errorf("Dependencies(app) = %v", got)
	}
	if !g.IsMember("app") || g.IsMember("serde") {
		t.Error("membership wrong")
	}
	if got := g.Members(); len(got) != 1 || got[0] != "app" {
		t.Errorf("Members() = %v", got)
	}

	nodes := g.Nodes()
	for i, want := range []string{"app", "serde", "serde_derive"} {
		if nodes[i].ID != want {
			t.Errorf("Nodes()[%d] = %s, want %s", i, nodes[i].ID, want)
		}
	}
}

func TestGraphErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: %v", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: %v", err)
	}
	if err := g.AddEdge("x", "a"); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: %v", err)
	}
	if err := g.AddEdge("a", "x"); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: %v", err)
	}
	if err := g.AddMember("x"); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown member: %v", err)
	}
}

func TestDependenciesIsCopy(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge("a", "b")

	deps := g.Dependencies("a")
	deps[0] = "mutated"
	if g.Dependencies("a")[0] != "b" {
		t.Error("Dependencies should return a copy")
	}
}
