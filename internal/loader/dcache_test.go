package loader

import (
	"testing"

	"dada/internal/project"
)

func TestDiskCachePutGetRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := OpenDiskCache("dada-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	var content project.Digest
	content[0] = 9
	payload := &DiskPayload{Schema: diskCacheSchemaVersion, Path: "a.dada", Content: content, SigCount: 2, Broken: false}
	if err := c.Put(content, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := c.Get(content)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected a hit after Put")
	}
	if got.Path != "a.dada" || got.SigCount != 2 || got.Broken {
		t.Fatalf("got = %+v, want Path=a.dada SigCount=2 Broken=false", got)
	}
}

func TestDiskCacheMissOnUnknownKey(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := OpenDiskCache("dada-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	var content project.Digest
	content[0] = 1
	_, hit, err := c.Get(content)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected a miss on a key never written")
	}
}

func TestDiskCacheStaleSchemaIsAMiss(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := OpenDiskCache("dada-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	var content project.Digest
	content[0] = 3
	if err := c.Put(content, &DiskPayload{Schema: diskCacheSchemaVersion + 1, Path: "a.dada", Content: content}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, hit, err := c.Get(content); hit || err != nil {
		t.Fatalf("Get of a mismatched-schema entry: hit=%v err=%v, want a clean miss", hit, err)
	}
}

func TestDiskCacheNilIsInertNotPanic(t *testing.T) {
	var c *DiskCache
	var content project.Digest

	if err := c.Put(content, &DiskPayload{}); err != nil {
		t.Fatalf("Put on nil cache should be a no-op, got %v", err)
	}
	if _, hit, err := c.Get(content); hit || err != nil {
		t.Fatalf("Get on nil cache should be a clean miss, got hit=%v err=%v", hit, err)
	}
}
