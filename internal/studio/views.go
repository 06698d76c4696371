package studio

import (
	"strings"

	"texgallery/internal/assets"
	"texgallery/internal/media"
	"texgallery/internal/modbuilder"
	"texgallery/internal/services"
)

// AssetView is a read-only snapshot of one asset.
type AssetView struct {
	ID         string           `json:"id"`
	Folder     string           `json:"folder"`
	Filename   string           `json:"filename"`
	Type       assets.MediaType `json:"type"`
	State      string           `json:"state"`
	IsModified bool             `json:"isModified"`
	IsNew      bool             `json:"isNew"`
	Selected   bool             `json:"selected"`
	FetchError string           `json:"fetchError,omitempty"`
	MIMEType   string           `json:"mimeType,omitempty"`
	Bytes      int              `json:"bytes,omitempty"`
}

func viewOf(a *assets.Asset) AssetView {
	v := AssetView{
		ID:         a.ID(),
		Folder:     a.Folder,
		Filename:   a.Filename,
		Type:       a.Type,
		State:      a.State().String(),
		IsModified: a.IsModified(),
		IsNew:      a.IsNew(),
		Selected:   a.Selected(),
	}
	if err := a.FetchErr(); err != nil {
		v.FetchError = err.Error()
	}
	if c, _ := assets.Resolve(a); c != nil {
		v.MIMEType = c.MIME()
		v.Bytes = c.Len()
	}
	return v
}

// Filter narrows asset listings. Zero values match everything.
type Filter struct {
	Type  string
	State string
	// Query matches a case-insensitive substring of folder or filename.
	Query string
}

func (f Filter) match(a *assets.Asset) (bool, error) {
	if f.Type != "" {
		t, err := assets.ParseMediaType(f.Type)
		if err != nil {
			return false, services.Wrap(services.ErrValidation, "studio", "filter", "type", err)
		}
		if a.Type != t {
			return false, nil
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.State)) {
	case "", "all":
	case "modified":
		if !a.IsModified() {
			return false, nil
		}
	case "new":
		if !a.IsNew() {
			return false, nil
		}
	case "changed":
		if !a.IsModified() && !a.IsNew() {
			return false, nil
		}
	case "selected":
		if !a.Selected() {
			return false, nil
		}
	case "failed":
		if a.FetchErr() == nil {
			return false, nil
		}
	default:
		return false, services.Wrap(services.ErrValidation, "studio", "filter", "unknown state "+f.State, nil)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(a.Folder), q) && !strings.Contains(strings.ToLower(a.Filename), q) {
			return false, nil
		}
	}
	return true, nil
}

// Status summarizes the session.
type Status struct {
	Assets       int                   `json:"assets"`
	ByType       map[string]int        `json:"byType"`
	Modified     int                   `json:"modified"`
	New          int                   `json:"new"`
	FetchFailed  int                   `json:"fetchFailed"`
	Selected     int                   `json:"selected"`
	MultiSelect  bool                  `json:"multiSelect"`
	LiveHandles  int                   `json:"liveHandles"`
	Groups       int                   `json:"groups"`
	Catalog      CatalogStatus         `json:"catalog"`
	Prefetch     assets.PrefetchReport `json:"prefetch"`
	LastProgress *ProgressEvent        `json:"lastProgress,omitempty"`
}

// CatalogStatus reports how the catalog lists loaded.
type CatalogStatus struct {
	Malformed int      `json:"malformed"`
	Missing   []string `json:"missing,omitempty"`
}

func catalogStatus(r media.CatalogReport) CatalogStatus {
	return CatalogStatus{Malformed: r.Malformed, Missing: append([]string(nil), r.Missing...)}
}

// GroupView is a texture group plus its current records.
type GroupView struct {
	modbuilder.Group
	Records []modbuilder.FileRecord `json:"records"`
}
