package id3

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// Version selects the ID3v2 revision a tag is written in.
type Version byte

const (
	V23 Version = 3
	V24 Version = 4

	DefaultVersion = V24
)

// ParseVersion accepts 3 or 4.
func ParseVersion(v int) (Version, error) {
	if v != int(V23) && v != int(V24) {
		return 0, fmt.Errorf("%d: %w", v, ErrInvalidVersion)
	}
	return Version(v), nil
}

func (v Version) valid() bool { return v == V23 || v == V24 }

func (v Version) String() string { return fmt.Sprintf("ID3v2.%d", byte(v)) }

// textEncoding is the encoding new text frames get for v.
func (v Version) textEncoding() id3v2.Encoding {
	if v == V23 {
		return id3v2.EncodingUTF16
	}
	return id3v2.EncodingUTF8
}

type options struct {
	translate bool
}

// Option configures Open.
type Option func(*options)

// WithoutTranslation keeps frames exactly as they are stored instead of
// translating them to the requested version when the file is loaded.
func WithoutTranslation() Option {
	return func(o *options) { o.translate = false }
}

// Tag wraps the ID3v2 tag of one file. It is not safe for concurrent use.
type Tag struct {
	inner   *id3v2.Tag
	path    string
	stored  Version
	members map[string]member
}

// Open parses the ID3v2 tag of the file at path. Unless WithoutTranslation
// is given, frames are translated to version right away.
func Open(path string, version Version, opts ...Option) (*Tag, error) {
	if !version.valid() {
		return nil, fmt.Errorf("%d: %w", version, ErrInvalidVersion)
	}
	o := options{translate: true}
	for _, opt := range opts {
		opt(&o)
	}

	inner, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open tag of %s: %w", path, err)
	}

	t := &Tag{inner: inner, path: path, stored: Version(inner.Version())}
	if o.translate {
		translate(inner, version)
		pinVersion(inner, version)
	}
	t.members = t.memberTable()
	return t, nil
}

// Path returns the file the tag was read from.
func (t *Tag) Path() string { return t.path }

// Version returns the revision of the tag as currently held in memory.
func (t *Tag) Version() Version { return Version(t.inner.Version()) }

// StoredVersion returns the revision of the tag as last read from or
// written to disk.
func (t *Tag) StoredVersion() Version { return t.stored }

// Count returns the number of frames in the tag.
func (t *Tag) Count() int { return t.inner.Count() }

// Save writes the tag to its file as the given version, replacing the
// tag block already there.
func (t *Tag) Save(version Version) error {
	if !version.valid() {
		return fmt.Errorf("%d: %w", version, ErrInvalidVersion)
	}
	translate(t.inner, version)
	pinVersion(t.inner, version)
	if version == V23 {
		restore, err := rawUTF16Frames(t.inner)
		if err != nil {
			return fmt.Errorf("failed to encode tag of %s: %w", t.path, err)
		}
		defer restore()
	}
	if err := t.inner.Save(); err != nil {
		return fmt.Errorf("failed to save tag of %s: %w", t.path, err)
	}
	t.stored = version
	return nil
}

// Close releases the file held by the tag.
func (t *Tag) Close() error {
	return t.inner.Close()
}

func pinVersion(inner *id3v2.Tag, v Version) {
	inner.SetVersion(byte(v))
	inner.SetDefaultEncoding(v.textEncoding())
}
