package assets

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MediaType tags the catalog source an asset was declared in. The numeric
// order is the catalog sort priority.
type MediaType int

const (
	TypeJPG MediaType = iota
	TypePNG
	TypeAudio
)

// MediaTypes lists every type in priority order.
var MediaTypes = []MediaType{TypeJPG, TypePNG, TypeAudio}

func (t MediaType) String() string {
	switch t {
	case TypeJPG:
		return "JPG"
	case TypePNG:
		return "PNG"
	case TypeAudio:
		return "Audio"
	default:
		return fmt.Sprintf("MediaType(%d)", int(t))
	}
}

// Dir is the lowercase folder name used in media paths and archive layouts.
func (t MediaType) Dir() string {
	return cases.Lower(language.Und).String(t.String())
}

// IsImage reports whether raster operations apply to the type.
func (t MediaType) IsImage() bool {
	return t == TypeJPG || t == TypePNG
}

// MarshalText encodes the type by its lowercase name.
func (t MediaType) MarshalText() ([]byte, error) {
	return []byte(t.Dir()), nil
}

// UnmarshalText accepts any casing of the type name (and "jpeg").
func (t *MediaType) UnmarshalText(text []byte) error {
	parsed, err := ParseMediaType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseMediaType resolves a type name, case-insensitively.
func ParseMediaType(value string) (MediaType, error) {
	switch cases.Fold().String(strings.TrimSpace(value)) {
	case "jpg", "jpeg":
		return TypeJPG, nil
	case "png":
		return TypePNG, nil
	case "audio":
		return TypeAudio, nil
	default:
		return 0, fmt.Errorf("unknown media type %q", value)
	}
}

// MIME returns the content type assumed for the asset's declared bytes.
func (t MediaType) MIME(filename string) string {
	switch t {
	case TypeJPG:
		return "image/jpeg"
	case TypePNG:
		return "image/png"
	}
	if byExt := mime.TypeByExtension(path.Ext(filename)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// Asset is one catalog entry plus its in-memory modification state. State
// fields are unexported; only Machine changes them.
type Asset struct {
	Folder   string
	Filename string
	Type     MediaType

	selected   bool
	fetchErr   error
	isModified bool
	isNew      bool

	original    *Content
	modified    *Content
	replacement *Content
}

// ID is the asset identity: "<type>/<folder>/<filename>".
func (a *Asset) ID() string {
	return MakeID(a.Type, a.Folder, a.Filename)
}

// MakeID formats an asset identity from its parts.
func MakeID(t MediaType, folder, filename string) string {
	return t.Dir() + "/" + folder + "/" + filename
}

// MediaPath is the declared location of the asset's raw bytes relative to the
// media root.
func (a *Asset) MediaPath() string {
	return a.Type.Dir() + "/" + a.Filename
}

func (a *Asset) IsModified() bool { return a.isModified }

func (a *Asset) IsNew() bool { return a.isNew }

func (a *Asset) Selected() bool { return a.selected }

// FetchErr returns the last original-content fetch failure, if any.
func (a *Asset) FetchErr() error { return a.fetchErr }

// Original returns the cached original bytes, which may be retained after a
// replacement even though they no longer resolve.
func (a *Asset) Original() *Content { return a.original }

func (a *Asset) Modified() *Content { return a.modified }

func (a *Asset) Replacement() *Content { return a.replacement }

// State reports the asset's position in the modification state machine.
func (a *Asset) State() State {
	switch {
	case a.isNew:
		return StateReplaced
	case a.isModified:
		return StateModified
	case a.original != nil:
		return StateHasOriginal
	default:
		return StatePristine
	}
}

// State is one node of the per-asset modification state machine.
type State int

const (
	StatePristine State = iota
	StateHasOriginal
	StateModified
	StateReplaced
)

func (s State) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StateHasOriginal:
		return "original"
	case StateModified:
		return "modified"
	case StateReplaced:
		return "new"
	default:
		return "unknown"
	}
}
