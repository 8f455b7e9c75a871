package tagging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/id3shim/src/features/config"
	"github.com/contre95/id3shim/src/features/metrics"
	"github.com/contre95/id3shim/src/id3"
)

// Service runs the tagging use-cases. Each operation opens its own tag and
// closes it before returning.
type Service struct {
	tagReader TagReader
	journal   Journal
	artwork   ArtworkResizer
	metrics   MetricsRecorder
	config    *config.Manager
}

// NewService creates a new tagging service
func NewService(tagReader TagReader, journal Journal, artwork ArtworkResizer, recorder MetricsRecorder, config *config.Manager) *Service {
	return &Service{
		tagReader: tagReader,
		journal:   journal,
		artwork:   artwork,
		metrics:   recorder,
		config:    config,
	}
}

// Version returns the configured tag version.
func (s *Service) Version() (id3.Version, error) {
	return id3.ParseVersion(s.config.Get().Tagging.Version)
}

// Inspect reads the tag of a file back from disk.
func (s *Service) Inspect(ctx context.Context, path string) (*TagInfo, error) {
	if err := checkPath(ctx, path); err != nil {
		return nil, err
	}
	info, err := s.tagReader.ReadFileTags(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return info, nil
}

// Normalize rewrites the tag of a file as the given version and checks
// that it reads back with that version.
func (s *Service) Normalize(ctx context.Context, path string, version id3.Version) (*TagInfo, error) {
	if err := checkPath(ctx, path); err != nil {
		return nil, err
	}
	start := time.Now()

	tag, err := id3.Open(path, version)
	if err != nil {
		return nil, fmt.Errorf("failed to open tag: %w", err)
	}
	defer tag.Close()

	previous := tag.StoredVersion()
	if err := tag.Save(version); err != nil {
		return nil, fmt.Errorf("failed to save tag: %w", err)
	}
	s.metrics.ObserveSave(int(version), time.Since(start))
	s.record(ctx, JournalEntry{
		Path:      path,
		Operation: OpSave,
		Version:   int(version),
		OldValue:  previous.String(),
		NewValue:  version.String(),
	})
	slog.Info("Tag saved", "path", path, "from", previous.String(), "to", version.String())

	info, err := s.tagReader.ReadFileTags(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read back tags: %w", err)
	}
	if info.Format != version.String() {
		return info, fmt.Errorf("%s: read back %q, want %q: %w", path, info.Format, version.String(), ErrVerifyFailed)
	}
	return info, nil
}

// Rewrite re-decodes one text frame with a fixed charset and saves the
// result. The frame is read exactly as stored. Nothing is written when
// decoding fails.
func (s *Service) Rewrite(ctx context.Context, path string, opts RewriteOptions) (string, error) {
	if err := checkPath(ctx, path); err != nil {
		return "", err
	}
	cfg := s.config.Get().Tagging

	frame := id3.FrameID(strings.ToUpper(opts.Frame))
	if frame == "" {
		frame = id3.FrameID(cfg.Rewrite.Frame)
	}
	if !frame.Valid() {
		return "", fmt.Errorf("%q: %w", frame, ErrInvalidFrameID)
	}
	charset := opts.Charset
	if charset == "" {
		charset = cfg.Rewrite.Charset
	}
	v := opts.Version
	if v == 0 {
		v = cfg.Version
	}
	version, err := id3.ParseVersion(v)
	if err != nil {
		return "", err
	}
	dec, err := id3.NewDecoder(charset)
	if err != nil {
		return "", err
	}
	dec.Transliterate = cfg.Rewrite.Transliterate

	start := time.Now()
	tag, err := id3.Open(path, version, id3.WithoutTranslation())
	if err != nil {
		return "", fmt.Errorf("failed to open tag: %w", err)
	}
	defer tag.Close()

	var old string
	if values := tag.TextValues(frame); len(values) > 0 {
		old = values[0]
	}

	text, err := id3.RewriteTextFrame(tag, frame, dec, version)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, id3.ErrDecode) {
			outcome = metrics.OutcomeDecodeError
		}
		s.metrics.ObserveRewrite(outcome, time.Since(start))
		slog.Warn("Rewrite failed", "path", path, "frame", frame, "charset", dec.Charset(), "error", err)
		return "", err
	}
	s.metrics.ObserveRewrite(metrics.OutcomeOK, time.Since(start))
	s.record(ctx, JournalEntry{
		Path:      path,
		Operation: OpRewrite,
		FrameID:   string(frame),
		Version:   int(version),
		OldValue:  old,
		NewValue:  text,
	})
	slog.Info("Frame rewritten", "path", path, "frame", frame, "charset", dec.Charset())
	return text, nil
}

// SetCover resizes an image and embeds it as the front cover.
func (s *Service) SetCover(ctx context.Context, path string, image []byte) error {
	if err := checkPath(ctx, path); err != nil {
		return err
	}
	if len(image) == 0 {
		return fmt.Errorf("empty image: %w", ErrInvalidImage)
	}
	cfg := s.config.Get()
	version, err := id3.ParseVersion(cfg.Tagging.Version)
	if err != nil {
		return err
	}

	start := time.Now()
	data, mime, err := s.artwork.Resize(image, cfg.Artwork.Size, cfg.Artwork.Quality)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	tag, err := id3.Open(path, version)
	if err != nil {
		return fmt.Errorf("failed to open tag: %w", err)
	}
	defer tag.Close()

	var old string
	if cover, ok := tag.CoverImage(); ok {
		old = describeImage(cover.MimeType, len(cover.Data))
	}
	tag.SetCoverImage(id3.Image{MimeType: mime, Description: "Cover", Data: data})
	if err := tag.Save(version); err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}
	s.metrics.ObserveCover(time.Since(start))
	s.record(ctx, JournalEntry{
		Path:      path,
		Operation: OpCover,
		FrameID:   string(id3.FramePicture),
		Version:   int(version),
		OldValue:  old,
		NewValue:  describeImage(mime, len(data)),
	})
	slog.Info("Cover embedded", "path", path, "mime", mime, "bytes", len(data))
	return nil
}

// History lists the journaled changes of a file, oldest first.
func (s *Service) History(ctx context.Context, path string) ([]JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.journal.History(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// record journals a change that is already on disk, so a journal failure
// is logged but does not fail the operation.
func (s *Service) record(ctx context.Context, entry JournalEntry) {
	entry.CreatedAt = time.Now()
	if err := s.journal.Record(ctx, entry); err != nil {
		slog.Error("Failed to journal change", "path", entry.Path, "operation", entry.Operation, "error", err)
	}
}

// Confine resolves path inside the configured server root, following
// symlinks, and fails with ErrOutsideRoot when it points anywhere else.
// Relative paths are taken relative to the root. Without a root, path is
// returned unchanged.
func (s *Service) Confine(path string) (string, error) {
	root := s.config.Get().Server.Root
	if root == "" {
		return path, nil
	}
	root, err := resolve(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	resolved, err := resolve(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	return resolved, nil
}

// resolve makes path absolute and evaluates its symlinks. A missing file
// is resolved through its directory.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	target, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return abs, nil
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

func checkPath(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
	return nil
}

func describeImage(mime string, size int) string {
	return fmt.Sprintf("%s (%d bytes)", mime, size)
}
