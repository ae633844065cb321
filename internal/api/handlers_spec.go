package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"contractparser/internal/docblock"
	"contractparser/internal/llm"
	"contractparser/internal/parser"
	"contractparser/internal/spec"
)

type specificationResponse struct {
	Filename      string         `json:"filename"`
	Specification spec.Response  `json:"specification"`
	Debug         *llm.DebugInfo `json:"debug,omitempty"`
}

type croppedSpecResponse struct {
	Specification     spec.Response `json:"specification"`
	CroppedFileBase64 string        `json:"cropped_file_base64"`
	CroppedFileName   string        `json:"cropped_file_name"`
}

// handleSpecificationInternal runs the rule-based extractor over an upload.
func (s *Server) handleSpecificationInternal(w http.ResponseWriter, r *http.Request) {
	filename, blocks, ok := s.readUploadBlocks(w, r)
	if !ok {
		return
	}

	result, err := spec.Extract(blocks)
	if err != nil {
		s.writeSpecError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, specificationResponse{
		Filename:      filename,
		Specification: result,
	})
}

// handleSpecificationAI delegates extraction to the LLM.
func (s *Server) handleSpecificationAI(w http.ResponseWriter, r *http.Request) {
	filename, blocks, ok := s.readUploadBlocks(w, r)
	if !ok {
		return
	}

	result, debug, err := s.neural.Detect(r.Context(), blocks)
	if err != nil {
		s.writeSpecError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, specificationResponse{
		Filename:      filename,
		Specification: result,
		Debug:         debug,
	})
}

// handleSpecificationExport extracts the specification rule-based and
// returns a cropped DOCX containing only its tables.
func (s *Server) handleSpecificationExport(w http.ResponseWriter, r *http.Request) {
	filename, blocks, ok := s.readUploadBlocks(w, r)
	if !ok {
		return
	}

	result, err := spec.Extract(blocks)
	if err != nil {
		s.writeSpecError(w, err)
		return
	}

	payload, err := spec.ExportDOCX(result)
	if err != nil {
		s.writeSpecError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, croppedSpecResponse{
		Specification:     result,
		CroppedFileBase64: base64.StdEncoding.EncodeToString(payload),
		CroppedFileName:   spec.ExportFilename(filename, result.Heading),
	})
}

// readUploadBlocks reads the multipart "file" field, enforces size and
// extension limits, and parses it into blocks. On failure it writes the
// error response and returns ok=false.
func (s *Server) readUploadBlocks(w http.ResponseWriter, r *http.Request) (string, []docblock.Block, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	if len(data) == 0 {
		jsonError(w, "uploaded file is empty", http.StatusBadRequest)
		return "", nil, false
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	blocks, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	return filename, blocks, true
}

// writeSpecError maps extraction failures onto HTTP statuses: a missing
// section is the caller's content problem (422), anything involving the
// model or its reply is an upstream failure (502).
func (s *Server) writeSpecError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, spec.ErrNotFound):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, spec.ErrBadModelReply), llm.IsRetryable(err):
		s.log.Error("extraction upstream failure", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
	default:
		s.log.Error("extraction failed", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
