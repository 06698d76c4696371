package media

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"texgallery/internal/assets"
	"texgallery/internal/config"
	"texgallery/internal/logging"
	"texgallery/internal/services"
)

// CatalogReport summarizes one catalog load.
type CatalogReport struct {
	Loaded    map[assets.MediaType]int
	Malformed int
	Missing   []string
}

// LoadRegistry reads the three configured list sources and builds the
// registry. A missing list contributes no assets and is reported; malformed
// lines are logged and skipped.
func LoadRegistry(ctx context.Context, cfg *config.Config, machine *assets.Machine, client HTTPDoer, logger *slog.Logger) (*assets.Registry, CatalogReport, error) {
	logger = logging.NewComponentLogger(logger, "catalog")
	report := CatalogReport{Loaded: make(map[assets.MediaType]int)}
	lists := []struct {
		kind assets.MediaType
		name string
	}{
		{assets.TypeJPG, cfg.Catalog.JPGList},
		{assets.TypePNG, cfg.Catalog.PNGList},
		{assets.TypeAudio, cfg.Catalog.AudioList},
	}

	sources := make([]assets.List, 0, len(lists))
	for _, list := range lists {
		if strings.TrimSpace(list.name) == "" {
			continue
		}
		rc, err := ReadCatalogSource(ctx, cfg, list.name, client)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				report.Missing = append(report.Missing, list.name)
				logger.Warn("catalog list missing; type will be empty",
					logging.String("list", list.name),
					logging.String("type", list.kind.String()),
					logging.Error(err),
				)
				continue
			}
			return nil, report, err
		}
		cat, err := assets.ParseCatalog(rc)
		_ = rc.Close()
		if err != nil {
			return nil, report, services.Wrap(services.ErrValidation, "catalog", "parse", list.name, err)
		}
		for _, line := range cat.Malformed {
			logger.Warn("skipping malformed catalog line",
				logging.String("list", list.name),
				logging.Int("line", line),
			)
		}
		report.Malformed += len(cat.Malformed)
		report.Loaded[list.kind] += len(cat.Entries)
		sources = append(sources, assets.List{Type: list.kind, Entries: cat.Entries})
	}

	registry := assets.Load(machine, sources...)
	logger.Info("catalog loaded",
		logging.Int("assets", registry.Len()),
		logging.Int("malformed", report.Malformed),
		logging.Int("missing_lists", len(report.Missing)),
	)
	return registry, report, nil
}
