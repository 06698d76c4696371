package archive

import (
	"fmt"
	"strings"
	"time"

	"texgallery/internal/assets"
	"texgallery/internal/textutil"
)

// DownloadAllPath is the download-all location of an asset.
func DownloadAllPath(t assets.MediaType, folder, filename string) string {
	return JoinPath(t.Dir()+"-assets", folder, filename)
}

// ModPackPath is the mod pack location of a group file.
func ModPackPath(product, subsystem, folder, filename string) string {
	return JoinPath(product, subsystem, "files", "assets", folder, "1", filename)
}

// JoinPath sanitizes each segment and joins them with '/'. Segments that
// themselves contain '/' are split first so nested folders survive.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		for _, piece := range strings.Split(seg, "/") {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			parts = append(parts, textutil.SanitizeSegment(piece))
		}
	}
	return strings.Join(parts, "/")
}

// ArchiveName returns "<prefix>.zip" or "<prefix>-YYYYMMDD-HHMMSS.zip".
func ArchiveName(prefix string, timestamped bool, now time.Time) string {
	prefix = textutil.SanitizeSegment(prefix)
	if !timestamped {
		return prefix + ".zip"
	}
	return fmt.Sprintf("%s-%s.zip", prefix, now.Format("20060102-150405"))
}
