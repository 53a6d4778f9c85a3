package receipt

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoRecords is returned when exporting an empty collection
var ErrNoRecords = errors.New("no records to export")

// ArchiveName is the fixed name of the exported archive
const ArchiveName = "receipts.zip"

var (
	dateKeepRegexp   = regexp.MustCompile(`[^a-zA-Z0-9\-]`)
	nameStripRegexp  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRegexp = regexp.MustCompile(`\s+`)
)

// ExportArchive packages every record's original file into a single
// in-memory zip archive, named deterministically from its extracted fields.
// Colliding names silently overwrite: the later record's bytes win, at the
// earlier record's position.
func (s *Service) ExportArchive() ([]byte, error) {
	records := s.store.Records()
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	names := make([]string, 0, len(records))
	entries := make(map[string][]byte, len(records))
	for i, rec := range records {
		data, err := base64.StdEncoding.DecodeString(rec.OriginalFileData.Base64)
		if err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", i, err)
		}
		name := entryName(rec)
		if _, seen := entries[name]; !seen {
			names = append(names, name)
		}
		entries[name] = data
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("creating archive entry %s: %w", name, err)
		}
		if _, err := f.Write(entries[name]); err != nil {
			w.Close()
			return nil, fmt.Errorf("writing archive entry %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	return buf.Bytes(), nil
}

// entryName builds the deterministic archive filename for one record:
// {date}_{company}_{category}_{mealType}_{cost}.{extension}
func entryName(rec Record) string {
	ext := strings.TrimPrefix(filepath.Ext(rec.OriginalFileName), ".")

	return fmt.Sprintf("%s_%s_%s_%s_%s.%s",
		sanitizeDate(rec.Date),
		sanitizeName(rec.CompanyName),
		sanitizeName(rec.Category),
		sanitizeName(rec.MealType),
		costLabel(rec.Cost),
		ext,
	)
}

// sanitizeDate keeps alphanumerics and hyphens, replacing everything else
// with underscores
func sanitizeDate(date string) string {
	return dateKeepRegexp.ReplaceAllString(date, "_")
}

// sanitizeName strips everything but alphanumerics and whitespace, then
// collapses whitespace runs into single underscores
func sanitizeName(name string) string {
	name = nameStripRegexp.ReplaceAllString(name, "")
	name = whitespaceRegexp.ReplaceAllString(strings.TrimSpace(name), "_")
	return name
}

// costLabel formats a cost as fixed two-decimal text with the dot replaced
// by an underscore, e.g. 12.5 -> "12_50"
func costLabel(cost float64) string {
	if cost <= 0 {
		return "0_00"
	}
	return strings.ReplaceAll(fmt.Sprintf("%.2f", cost), ".", "_")
}
