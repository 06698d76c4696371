package session

import (
	"encoding/base64"
	"log/slog"
	"strings"

	"texgallery/internal/assets"
	"texgallery/internal/logging"
	"texgallery/internal/services"
)

// Warning records a document entry that was not applied.
type Warning struct {
	Index int
	Entry string
	Err   error
}

func (w Warning) Error() string { return w.Entry + ": " + w.Err.Error() }

// ApplyReport summarizes an Apply pass.
type ApplyReport struct {
	Applied  int
	Warnings []Warning
}

// Apply restores doc onto registry through its state machine. Entries are
// matched by id when present, then by type+folder+filename, then by
// folder+filename. Identical payloads within one document share a single
// Content handle.
func Apply(doc Document, registry *assets.Registry, logger *slog.Logger) ApplyReport {
	logger = logging.NewComponentLogger(logger, "session")
	var report ApplyReport
	if registry == nil {
		return report
	}
	machine := registry.Machine()
	shared := make(map[string]*assets.Content)

	warn := func(i int, e Entry, err error) {
		report.Warnings = append(report.Warnings, Warning{Index: i, Entry: e.label(), Err: err})
		logger.Warn("session entry not applied",
			logging.Int("index", i),
			logging.String(logging.FieldAsset, e.label()),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
	}

	for i, entry := range doc {
		a, ok := match(registry, entry)
		if !ok {
			warn(i, entry, services.Wrap(services.ErrIdentityMismatch, "session", "match", "no asset matches entry", nil))
			continue
		}

		payload, replace := entry.payload()
		if payload == "" {
			warn(i, entry, services.Wrap(services.ErrValidation, "session", "content", "entry carries no content", nil))
			continue
		}
		mimeType := strings.TrimSpace(entry.MIMEType)
		if mimeType == "" {
			mimeType = a.Type.MIME(a.Filename)
		}
		key := mimeType + "\x00" + payload
		content, seen := shared[key]
		if !seen {
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				warn(i, entry, services.Wrap(services.ErrValidation, "session", "content", "invalid base64", err))
				continue
			}
			content = assets.NewContent(data, mimeType)
			shared[key] = content
		}

		var err error
		if replace {
			err = machine.ApplyReplacement(a, content)
		} else {
			err = machine.ApplyModification(a, content)
		}
		if err != nil {
			warn(i, entry, err)
			continue
		}
		report.Applied++
	}

	logger.Info("session applied",
		logging.Int("entries", len(doc)),
		logging.Int("applied", report.Applied),
		logging.Int("warnings", len(report.Warnings)),
	)
	return report
}

// payload picks the content to restore. Replacement wins over modification,
// matching the state machine's resolve priority.
func (e Entry) payload() (string, bool) {
	switch {
	case e.IsNew && e.NewContentBase64 != "":
		return e.NewContentBase64, true
	case e.IsModified && e.ModifiedContentBase64 != "":
		return e.ModifiedContentBase64, false
	case e.NewContentBase64 != "":
		return e.NewContentBase64, true
	default:
		return e.ModifiedContentBase64, false
	}
}

func match(registry *assets.Registry, e Entry) (*assets.Asset, bool) {
	if id := strings.TrimSpace(e.ID); id != "" {
		if a, ok := registry.LookupID(id); ok {
			return a, true
		}
	}
	if e.Type != "" {
		if t, err := assets.ParseMediaType(e.Type); err == nil {
			if a, ok := registry.LookupType(t, e.Folder, e.Filename); ok {
				return a, true
			}
		}
	}
	return registry.Lookup(e.Folder, e.Filename)
}
