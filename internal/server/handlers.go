package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Kotae document chatbot API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
}

// handleUpload accepts a multipart file, spools it to a temporary file, and
// ingests it. The temporary file is removed on every exit path.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		filename = "unknown_file"
	}
	s.logger.Info("processing upload", zap.String("filename", filename))

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !extract.ExtensionAllowed(ext) {
		s.respondError(w, http.StatusBadRequest,
			"File type "+ext+" not supported. Use: "+strings.Join(extract.AllowedExtensions, ", "))
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		s.logger.Error("failed to create temp file", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error during processing.")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		s.logger.Error("failed to spool upload", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error during processing.")
		return
	}
	_ = tmp.Close()

	content, err := os.ReadFile(tmpPath)
	if err != nil {
		s.logger.Error("failed to read upload", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error during processing.")
		return
	}

	count, err := s.ingestor.IngestFile(r.Context(), content, filename)
	if err != nil {
		s.respondIngestError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "success",
		"filename":         filename,
		"chunks_processed": count,
	})
}

func (s *Server) handleImportCMS(w http.ResponseWriter, r *http.Request) {
	var req models.CMSImport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("importing cms content", zap.String("source", req.Source))

	count, err := s.ingestor.ImportCMS(r.Context(), req.Content, req.Source, req.Metadata)
	if err != nil {
		s.respondIngestError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"source":  req.Source,
		"chunks":  count,
		"message": "CMS content imported successfully",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("chat query", zap.String("query", utils.Truncate(req.Query, 200)))

	result, err := s.answerer.Answer(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, answer.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("chat failed", zap.String("query", req.Query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error during processing.")
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !s.store.Clear(r.Context()) {
		s.respondError(w, http.StatusInternalServerError, "Failed to clear database")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Database cleared"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := s.store.Info(ctx)
	if err != nil {
		s.logger.Error("status: collection info failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{"collection": info}
	if s.history != nil {
		if count, err := s.history.CountIngests(ctx); err == nil {
			resp["ingests"] = count
		}
		if count, err := s.history.CountChunks(ctx); err == nil {
			resp["chunks_ingested"] = count
		}
		if recent, err := s.history.ListRecent(ctx, 10); err == nil {
			resp["recent"] = recent
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondIngestError maps ingestion failures to HTTP statuses: bad or empty
// input is the client's problem, a rejected store write is ours.
func (s *Server) respondIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ingest.ErrNoContent):
		s.respondError(w, http.StatusBadRequest, "No content extracted.")
	case errors.Is(err, ingest.ErrNoEmbeddings):
		s.respondError(w, http.StatusBadRequest, "Failed to generate embeddings.")
	case errors.Is(err, ingest.ErrNoChunks):
		s.respondError(w, http.StatusBadRequest, "Failed to generate embeddings from content.")
	case errors.Is(err, ingest.ErrStoreRejected):
		s.logger.Error("storage failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Database storage failed.")
	default:
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error during processing.")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
