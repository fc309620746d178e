// Package manifest implements robot.MetadataSource against a Paperpile CSV
// export: one row per reference, keyed by the PDF file name it attaches
// bibliographic metadata to.
package manifest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/robot"
)

// knownColumns maps a lower-cased CSV header to the Record key it
// populates. Anything extra in the export is carried through verbatim
// under its own header name, so a Paperpile schema change never silently
// drops a field.
var knownColumns = map[string]string{
	"title":     "title",
	"abstract":  "abstract",
	"authors":   "authors",
	"keywords":  "keywords",
	"venue":     "venue",
	"journal":   "venue",
	"year":      "year",
	"tags":      "tags",
	"item type": "item_type",
	"doi":       "doi",
	"arxiv id":  "arxiv_id",
	"folders":   "folders",
}

// listField is the set of Record keys that hold a semicolon-separated list
// in the CSV and should be split into a string slice rather than kept as
// one string, matching how Paperpile exports multi-value fields.
var listField = map[string]bool{
	"authors": true, "keywords": true, "tags": true, "folders": true,
}

// CSVSource loads a Paperpile CSV export. It implements
// robot.MetadataSource; ManifestSyncHandler caches the result for the
// lifetime of the handler, so Load is expected to run exactly once.
type CSVSource struct {
	Path     string
	Filename func(row map[string]string) string
}

// NewCSVSource builds a CSVSource that keys records by the "filename"
// column, case-folded, matching ManifestSyncHandler's lookup.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Filename: func(row map[string]string) string {
		name := row["filename"]
		if strings.TrimSpace(name) == "" {
			return ""
		}
		return strings.ToLower(filepath.Base(name))
	}}
}

// Load implements robot.MetadataSource.
func (s *CSVSource) Load(context.Context) (map[string]robot.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", s.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("manifest: read header: %w", err)
	}
	lowerHeader := make([]string, len(header))
	for i, h := range header {
		lowerHeader[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make(map[string]robot.Record)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manifest: read row: %w", err)
		}

		row := make(map[string]string, len(lowerHeader))
		for i, col := range lowerHeader {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}

		key := s.Filename(row)
		if key == "" {
			continue
		}
		out[key] = rowToRecord(row)
	}
	return out, nil
}

func rowToRecord(row map[string]string) robot.Record {
	rec := robot.Record{}
	for col, value := range row {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		key, known := knownColumns[col]
		if !known {
			rec[col] = value
			continue
		}

		switch {
		case key == "year":
			if year, err := strconv.Atoi(value); err == nil {
				rec[key] = year
			} else {
				rec[key] = value
			}
		case listField[key]:
			parts := strings.Split(value, ";")
			list := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					list = append(list, p)
				}
			}
			rec[key] = list
		default:
			rec[key] = value
		}
	}
	return rec
}
