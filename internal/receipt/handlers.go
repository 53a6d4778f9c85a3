package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zombor/receipt-binder/internal/scanning"
)

// maxUploadSize caps multipart parsing at 50MB to handle high-resolution
// phone photos
const maxUploadSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// recordIndex parses the {index} path value
func recordIndex(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("index"))
}

// handleIndex serves a minimal landing page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!DOCTYPE html><html><head><title>Receipt Binder</title></head>"+
		"<body><h1>Receipt Binder</h1><p>API is running. See /api/receipts.</p></body></html>")
}

// handleListReceipts returns the blob-free listing of all records
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Store().Summaries())
}

// handleUploadBatch ingests a multipart batch of receipt files
func (s *Server) handleUploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "Upload is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		// Single-file clients use the "file" field
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		jsonError(w, "No files were selected. Please choose at least one file to upload.", http.StatusBadRequest)
		return
	}

	files := make([]scanning.InputFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			jsonError(w, fmt.Sprintf("Error opening %s", header.Filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("Error reading %s", header.Filename), http.StatusBadRequest)
			return
		}
		files = append(files, scanning.InputFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := s.service.IngestBatch(r.Context(), files)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			jsonError(w, "A batch is already being processed. Please wait.", http.StatusConflict)
			return
		}
		slog.Error("Error ingesting batch", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// handleGetOriginalFile serves a record's untouched original bytes
func (s *Server) handleGetOriginalFile(w http.ResponseWriter, r *http.Request) {
	index, err := recordIndex(r)
	if err != nil {
		corsError(w, "Invalid record index", http.StatusBadRequest)
		return
	}

	data, mimeType, err := s.service.OriginalFile(index)
	if err != nil {
		corsError(w, "Record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Write(data)
}

// handleGetPreview serves a record's JPEG extraction image
func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	index, err := recordIndex(r)
	if err != nil {
		corsError(w, "Invalid record index", http.StatusBadRequest)
		return
	}

	data, err := s.service.PreviewImage(index)
	if err != nil {
		corsError(w, "Record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

// editRequest is the body of a field edit
type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// handleEditReceipt updates one field of one record
func (s *Server) handleEditReceipt(w http.ResponseWriter, r *http.Request) {
	index, err := recordIndex(r)
	if err != nil {
		corsError(w, "Invalid record index", http.StatusBadRequest)
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.Store().EditField(index, req.Field, req.Value); err != nil {
		corsError(w, "Record not found", http.StatusNotFound)
		return
	}

	rec, err := s.service.Store().Record(index)
	if err != nil {
		corsError(w, "Record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, Summary{
		Index:            index,
		Date:             rec.Date,
		CompanyName:      rec.CompanyName,
		Category:         rec.Category,
		MealType:         rec.MealType,
		Cost:             rec.Cost,
		OriginalFileName: rec.OriginalFileName,
	})
}

// handleDeleteReceipt removes one record
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	index, err := recordIndex(r)
	if err != nil {
		corsError(w, "Invalid record index", http.StatusBadRequest)
		return
	}

	if err := s.service.Store().Delete(index); err != nil {
		corsError(w, "Record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, s.service.Store().State())
}

// handleState returns length, cursor, busy flag and last error
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Store().State())
}

// handleCursorNext advances the preview cursor with wraparound
func (s *Server) handleCursorNext(w http.ResponseWriter, r *http.Request) {
	s.service.Store().CursorNext()
	writeJSON(w, s.service.Store().State())
}

// handleCursorPrev moves the preview cursor back with wraparound
func (s *Server) handleCursorPrev(w http.ResponseWriter, r *http.Request) {
	s.service.Store().CursorPrev()
	writeJSON(w, s.service.Store().State())
}

// handleReset clears the whole collection
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Store().Reset()
	writeJSON(w, s.service.Store().State())
}

// handleExport streams the zip archive of all original files
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportArchive()
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			jsonError(w, "There are no receipts to export.", http.StatusBadRequest)
			return
		}
		slog.Error("Error exporting archive", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArchiveName))
	w.Write(data)
}
