package assets

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// CatalogEntry is one "<folder> <filename>" record.
type CatalogEntry struct {
	Folder   string
	Filename string
}

// Catalog is the parsed form of one list source.
type Catalog struct {
	Entries []CatalogEntry
	// Malformed holds 1-based line numbers that carried a single token.
	Malformed []int
}

// ParseCatalog reads whitespace-delimited records. Blank lines are ignored,
// tokens beyond the second are ignored, and single-token lines are recorded
// as malformed and skipped.
func ParseCatalog(r io.Reader) (Catalog, error) {
	var cat Catalog
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		switch len(fields) {
		case 0:
			continue
		case 1:
			cat.Malformed = append(cat.Malformed, line)
			continue
		}
		cat.Entries = append(cat.Entries, CatalogEntry{Folder: fields[0], Filename: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return cat, fmt.Errorf("read catalog line %d: %w", line+1, err)
	}
	return cat, nil
}

// List tags catalog entries with the type their source file declares.
type List struct {
	Type    MediaType
	Entries []CatalogEntry
}
