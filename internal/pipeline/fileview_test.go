package pipeline

import (
	"context"
	"testing"

	"github.com/motioncam/dngpipe/internal/settings"
)

func TestFileViewListsAndReadsFrames(t *testing.T) {
	parser := newTestParser(t, 32, 32, 2)
	j := NewJob("test-container", "clip", parser, settings.Default(), nil, nil)
	v := NewFileView(j)
	ctx := context.Background()

	roots, err := v.ListFiles(ctx, nil)
	if err != nil || len(roots) != 1 || roots[0].Name != "clip" {
		t.Fatalf("ListFiles(root) = %v, %v", roots, err)
	}

	files, err := v.ListFiles(ctx, []string{"clip"})
	if err != nil {
		t.Fatalf("ListFiles(clip): %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 planned frames, got %d", len(files))
	}

	entry, err := v.FindEntry(ctx, []string{"clip", files[0].Name})
	if err != nil {
		t.Fatalf("FindEntry: %v", err)
	}
	if entry.Type != EntryFile {
		t.Fatalf("expected EntryFile, got %v", entry.Type)
	}

	data, err := v.ReadFile(ctx, []string{"clip", files[0].Name})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty DNG bytes")
	}
}

func TestFileViewRejectsUnknownPaths(t *testing.T) {
	parser := newTestParser(t, 32, 32, 1)
	j := NewJob("test-container", "clip", parser, settings.Default(), nil, nil)
	v := NewFileView(j)
	ctx := context.Background()

	if _, err := v.FindEntry(ctx, []string{"nope"}); err == nil {
		t.Fatal("expected an error for an unknown root entry")
	}
	if _, err := v.ListFiles(ctx, []string{"clip", "extra"}); err == nil {
		t.Fatal("expected an error for a too-deep path")
	}
}
