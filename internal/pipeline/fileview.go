package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// EntryType distinguishes a directory-shaped path segment from a leaf
// file within a FileView.
type EntryType int

const (
	EntryDir EntryType = iota
	EntryFile
)

// Entry is one listable item in a FileView: a container acting as a
// directory of its own output frames, or a single rendered DNG. Size is
// the projected byte count for a file entry and zero for a directory.
type Entry struct {
	Type      EntryType
	PathParts []string
	Name      string
	Size      int
}

// FileView exposes a job's planned output as a small read-only
// filesystem: one virtual directory containing one DNG per planned
// frame. It's the seam a future VFS adapter would implement against,
// named after the original renderer's own output-as-filesystem idiom.
type FileView interface {
	ListFiles(ctx context.Context, pathParts []string) ([]Entry, error)
	FindEntry(ctx context.Context, pathParts []string) (Entry, error)
	ReadFile(ctx context.Context, pathParts []string) ([]byte, error)
}

// jobFileView implements FileView over a single Job, rooted at the
// job's base name.
type jobFileView struct {
	job *Job
}

// NewFileView wraps job as a FileView rooted at a single directory named
// after its base.
func NewFileView(job *Job) FileView {
	return &jobFileView{job: job}
}

func (v *jobFileView) root() string { return v.job.base }

func (v *jobFileView) ListFiles(_ context.Context, pathParts []string) ([]Entry, error) {
	switch len(pathParts) {
	case 0:
		return []Entry{{Type: EntryDir, PathParts: nil, Name: v.root()}}, nil
	case 1:
		if pathParts[0] != v.root() {
			return nil, fmt.Errorf("pipeline: no such directory %q", pathParts[0])
		}
		entries := v.job.ListFrames()
		out := make([]Entry, len(entries))
		for i, e := range entries {
			out[i] = Entry{
				Type:      EntryFile,
				PathParts: []string{v.root()},
				Name:      e.FileName,
				Size:      e.ProjectedSize,
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pipeline: no such directory %q", strings.Join(pathParts, "/"))
	}
}

func (v *jobFileView) FindEntry(ctx context.Context, pathParts []string) (Entry, error) {
	if len(pathParts) == 1 && pathParts[0] == v.root() {
		return Entry{Type: EntryDir, Name: v.root()}, nil
	}
	if len(pathParts) != 2 || pathParts[0] != v.root() {
		return Entry{}, fmt.Errorf("pipeline: no such entry %q", strings.Join(pathParts, "/"))
	}
	entries, err := v.ListFiles(ctx, pathParts[:1])
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == pathParts[1] {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("pipeline: no such file %q", pathParts[1])
}

func (v *jobFileView) ReadFile(ctx context.Context, pathParts []string) ([]byte, error) {
	entry, err := v.FindEntry(ctx, pathParts)
	if err != nil {
		return nil, err
	}
	if entry.Type != EntryFile {
		return nil, fmt.Errorf("pipeline: %q is a directory", strings.Join(pathParts, "/"))
	}
	index, err := outputIndexFromFileName(v.job, entry.Name)
	if err != nil {
		return nil, err
	}
	return v.job.ReadFrame(ctx, index)
}

// outputIndexFromFileName finds the planned entry whose filename matches
// name and returns its output index, since filenames embed a
// zero-padded index rather than the index itself.
func outputIndexFromFileName(job *Job, name string) (int, error) {
	for _, e := range job.ListFrames() {
		if e.FileName == name {
			return e.Index, nil
		}
	}
	return 0, fmt.Errorf("pipeline: no planned frame named %q", name)
}
