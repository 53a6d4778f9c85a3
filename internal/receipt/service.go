package receipt

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zombor/receipt-binder/internal/scanning"
)

// Normalizer converts one input file into its canonical extraction payload
type Normalizer interface {
	Normalize(file scanning.InputFile) (*scanning.NormalizedPayload, error)
}

// Service drives the ingestion pipeline: normalize, extract, append. It also
// fronts the store for the HTTP layer.
type Service struct {
	store      *Store
	normalizer Normalizer
	extractor  scanning.Extractor
}

// NewService creates a new Service
func NewService(store *Store, normalizer Normalizer, extractor scanning.Extractor) *Service {
	return &Service{
		store:      store,
		normalizer: normalizer,
		extractor:  extractor,
	}
}

// BatchResult reports the outcome of one ingested batch. Errors holds every
// per-file message in input order; the store's error slot only keeps the
// latest one.
type BatchResult struct {
	BatchID  string   `json:"batchId"`
	Appended int      `json:"appended"`
	Errors   []string `json:"errors,omitempty"`
}

// IngestBatch processes files strictly sequentially in input order. A
// failure at any stage aborts only that file; surviving records are appended
// in the relative order of their inputs. The busy flag is held for the whole
// batch and gates concurrent submissions.
func (s *Service) IngestBatch(ctx context.Context, files []scanning.InputFile) (*BatchResult, error) {
	if err := s.store.BeginBatch(); err != nil {
		return nil, err
	}
	defer s.store.EndBatch()

	result := &BatchResult{BatchID: uuid.NewString()}
	slog.Info("Processing batch", "batch_id", result.BatchID, "files", len(files))

	for _, file := range files {
		rec, err := s.processFile(ctx, file)
		if err != nil {
			msg := fmt.Sprintf("%s: %v", file.Name, err)
			slog.Error("Failed to process receipt",
				"batch_id", result.BatchID,
				"filename", file.Name,
				"content_type", file.ContentType,
				"file_size", len(file.Data),
				"error", err,
			)
			s.store.SetError(msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		s.store.Append(*rec)
		result.Appended++
	}

	slog.Info("Batch complete",
		"batch_id", result.BatchID,
		"appended", result.Appended,
		"failed", len(result.Errors),
	)
	return result, nil
}

// processFile builds one record from one input file. The record is assembled
// completely before it is appended, so no partially built record is ever
// visible.
func (s *Service) processFile(ctx context.Context, file scanning.InputFile) (*Record, error) {
	payload, err := s.normalizer.Normalize(file)
	if err != nil {
		return nil, fmt.Errorf("normalizing file: %w", err)
	}

	fields, err := s.extractor.Extract(ctx, payload.ExtractionImage)
	if err != nil {
		return nil, fmt.Errorf("extracting fields: %w", err)
	}

	return &Record{
		Date:        fields.Date,
		CompanyName: fields.CompanyName,
		Category:    fields.Category,
		MealType:    fields.MealType,
		Cost:        fields.Cost,
		OriginalFileData: FileData{
			Base64:   base64.StdEncoding.EncodeToString(payload.OriginalBytes),
			MimeType: payload.OriginalMimeType,
		},
		OriginalFileName: file.Name,
		ExtractionImage:  base64.StdEncoding.EncodeToString(payload.ExtractionImage),
	}, nil
}

// Store returns the underlying collection
func (s *Service) Store() *Store {
	return s.store
}

// OriginalFile returns the original bytes and MIME type of a record
func (s *Service) OriginalFile(index int) ([]byte, string, error) {
	rec, err := s.store.Record(index)
	if err != nil {
		return nil, "", err
	}
	data, err := base64.StdEncoding.DecodeString(rec.OriginalFileData.Base64)
	if err != nil {
		return nil, "", fmt.Errorf("decoding original file data: %w", err)
	}
	return data, rec.OriginalFileData.MimeType, nil
}

// PreviewImage returns the JPEG extraction image of a record
func (s *Service) PreviewImage(index int) ([]byte, error) {
	rec, err := s.store.Record(index)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(rec.ExtractionImage)
	if err != nil {
		return nil, fmt.Errorf("decoding preview image: %w", err)
	}
	return data, nil
}
