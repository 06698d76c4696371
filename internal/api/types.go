package api

import (
	"texgallery/internal/archive"
	"texgallery/internal/editor"
	"texgallery/internal/services"
	"texgallery/internal/session"
)

// APIError is the body of a failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"requestId,omitempty"`
}

// Outcome is the transport form of one batch result.
type Outcome struct {
	AssetID   string `json:"assetId"`
	Status    string `json:"status"`
	Source    string `json:"source,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchReport is the transport form of an editor.Report.
type BatchReport struct {
	Operation string    `json:"operation"`
	Total     int       `json:"total"`
	Applied   int       `json:"applied"`
	Failed    int       `json:"failed"`
	Excluded  int       `json:"excluded"`
	Outcomes  []Outcome `json:"outcomes"`
}

// FromReport converts an editor report.
func FromReport(r editor.Report) BatchReport {
	out := BatchReport{
		Operation: r.Operation,
		Total:     r.Total,
		Applied:   r.Applied,
		Failed:    r.Failed,
		Excluded:  r.Excluded,
		Outcomes:  make([]Outcome, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		item := Outcome{AssetID: o.AssetID, Status: string(o.Status), Source: o.Source.String()}
		if o.Err != nil {
			item.ErrorKind = services.Kind(o.Err)
			item.Error = o.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, item)
	}
	return out
}

// SkipView describes an entry left out of an archive.
type SkipView struct {
	Path      string `json:"path"`
	Label     string `json:"label"`
	ErrorKind string `json:"errorKind"`
	Error     string `json:"error"`
}

// ArchiveSummary is the transport form of an archive.Result.
type ArchiveSummary struct {
	Name    string     `json:"name"`
	Paths   []string   `json:"paths"`
	Skipped []SkipView `json:"skipped"`
	Bytes   int64      `json:"bytes"`
}

// FromArchiveResult converts an archive result.
func FromArchiveResult(name string, r archive.Result) ArchiveSummary {
	out := ArchiveSummary{Name: name, Paths: r.Paths, Bytes: r.Bytes, Skipped: make([]SkipView, 0, len(r.Skipped))}
	if out.Paths == nil {
		out.Paths = []string{}
	}
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, SkipView{
			Path:      s.Path,
			Label:     s.Label,
			ErrorKind: services.Kind(s.Err),
			Error:     s.Err.Error(),
		})
	}
	return out
}

// WarningView is one session apply warning.
type WarningView struct {
	Index   int    `json:"index"`
	Entry   string `json:"entry"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RestoreResponse reports a session restore.
type RestoreResponse struct {
	Applied  int           `json:"applied"`
	Warnings []WarningView `json:"warnings"`
}

// FromApplyReport converts a session apply report.
func FromApplyReport(r session.ApplyReport) RestoreResponse {
	out := RestoreResponse{Applied: r.Applied, Warnings: make([]WarningView, 0, len(r.Warnings))}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, WarningView{
			Index:   w.Index,
			Entry:   w.Entry,
			Kind:    services.Kind(w.Err),
			Message: w.Err.Error(),
		})
	}
	return out
}

// SelectionRequest changes selection flags.
type SelectionRequest struct {
	IDs      []string `json:"ids"`
	Selected bool     `json:"selected"`
}

// ModeRequest toggles multi-select mode.
type ModeRequest struct {
	Enabled bool `json:"enabled"`
}
