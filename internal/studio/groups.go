package studio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"texgallery/internal/archive"
	"texgallery/internal/modbuilder"
	"texgallery/internal/services"
	"texgallery/internal/textutil"
)

// Groups lists texture groups with their records.
func (s *Studio) Groups() []GroupView {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := s.builder.Groups()
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupView{Group: g, Records: s.builder.Records(g.Name)})
	}
	return out
}

// Group returns one texture group with its records.
func (s *Studio) Group(name string) (GroupView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.builder.Group(name)
	if !ok {
		return GroupView{}, services.Wrap(services.ErrNotFound, "studio", "group", fmt.Sprintf("group %q", name), nil)
	}
	return GroupView{Group: g, Records: s.builder.Records(name)}, nil
}

// SetGroupRecord applies a record change to one group file.
func (s *Studio) SetGroupRecord(group, filename string, req modbuilder.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Apply(group, filename, req)
}

// ClearGroupRecord removes a group file's record.
func (s *Studio) ClearGroupRecord(group, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Clear(group, filename)
}

// PackName is the archive filename for a group's mod pack.
func (s *Studio) PackName(group string) string {
	return archive.ArchiveName(s.packPrefix(group), s.cfg.Export.Timestamped, s.now())
}

// BuildPack writes a group's mod pack archive to w.
func (s *Studio) BuildPack(ctx context.Context, w io.Writer, group string) (archive.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.builder.Entries(group, s.fetcher)
	if err != nil {
		return archive.Result{}, err
	}
	return s.packager.Build(ctx, w, entries, s.packOptions())
}

// BuildPackFile writes a group's mod pack into the output directory.
func (s *Studio) BuildPackFile(ctx context.Context, group string) (string, archive.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.builder.Entries(group, s.fetcher)
	if err != nil {
		return "", archive.Result{}, err
	}
	path := filepath.Join(s.cfg.Paths.OutputDir, archive.ArchiveName(s.packPrefix(group), s.cfg.Export.Timestamped, s.now()))
	result, err := s.packager.WriteFile(ctx, path, entries, s.packOptions())
	if err != nil {
		return "", result, err
	}
	return path, result, nil
}

// packPrefix folds the group name into a lowercase token so configured
// names with spaces still yield portable archive names.
func (s *Studio) packPrefix(group string) string {
	return s.cfg.ModPack.ArchivePrefix + "-" + textutil.SanitizeToken(group)
}

func (s *Studio) packOptions() archive.Options {
	return archive.Options{
		Directories: s.builder.Directories(),
		Progress:    s.archiveProgress("modpack"),
		Modified:    s.now(),
	}
}
