package loader_test

import (
	"testing"

	"dada/internal/loader"
	"dada/internal/project"
)

func TestModuleCacheHitMiss(t *testing.T) {
	c := loader.NewModuleCache(16)
	var d1, d2 project.Digest
	d1[0] = 1
	d2[0] = 2

	c.Put("a.dada", d1, 3, false)

	if _, _, ok := c.Get("a.dada", d2); ok {
		t.Fatal("expected miss on a different content hash")
	}
	sigCount, broken, ok := c.Get("a.dada", d1)
	if !ok {
		t.Fatal("expected hit on the matching content hash")
	}
	if sigCount != 3 || broken {
		t.Fatalf("sigCount=%d broken=%v, want 3, false", sigCount, broken)
	}
}

func TestModuleCacheMissOnUnknownPath(t *testing.T) {
	c := loader.NewModuleCache(4)
	var d project.Digest
	if _, _, ok := c.Get("nope.dada", d); ok {
		t.Fatal("expected miss on a path never Put")
	}
}

func TestModuleCachePutOverwrites(t *testing.T) {
	c := loader.NewModuleCache(4)
	var d project.Digest
	d[0] = 7

	c.Put("a.dada", d, 1, true)
	c.Put("a.dada", d, 2, false)

	sigCount, broken, ok := c.Get("a.dada", d)
	if !ok || sigCount != 2 || broken {
		t.Fatalf("Get = %d, %v, %v; want the second Put's values", sigCount, broken, ok)
	}
}
