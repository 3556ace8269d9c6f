package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/retriever"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/storage"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var query models.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if query.TopK <= 0 {
		query.TopK = s.config.Retrieval.TopK
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request",
		zap.String("category", query.Category),
		zap.Int("top_k", query.TopK),
		zap.Bool("multi_source", query.MultiSource))

	answer, err := s.orchestrator.Ask(r.Context(), &query)
	if err != nil {
		var unavailable *retriever.UnavailableError
		if errors.As(err, &unavailable) {
			s.respondError(w, http.StatusNotFound, unavailable.Reason)
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Filename == "" || input.Content == "" {
		s.respondError(w, http.StatusBadRequest, "filename and content are required")
		return
	}
	if input.Category != "" && !models.ValidCategory(strings.ToLower(strings.TrimSpace(input.Category))) {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	doc, err := s.indexer.IndexDocument(r.Context(), &input)
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{
		"id":       doc.ID,
		"category": doc.Category,
		"status":   "indexed",
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	docs, err := s.storage.ListDocuments(r.Context(), category, offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Content stays out of listings; fetch a single document for the text.
	type listItem struct {
		ID        string `json:"id"`
		Filename  string `json:"filename"`
		Category  string `json:"category"`
		FileType  string `json:"file_type"`
		SizeBytes int64  `json:"size_bytes"`
		CreatedAt string `json:"created_at"`
	}
	items := make([]listItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, listItem{
			ID:        d.ID,
			Filename:  d.Filename,
			Category:  d.Category,
			FileType:  d.FileType,
			SizeBytes: d.SizeBytes,
			CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": items, "count": len(items)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetDocument(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err := s.indexer.DeleteDocument(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	limit := queryInt(r, "limit", 10)
	results, err := s.keywordIndex.Search(r.Context(), q, category, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byCategory, err := s.storage.CountDocumentsByCategory(ctx)
	if err != nil {
		s.logger.Error("status: count by category failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"documents":             docCount,
		"documents_by_category": byCategory,
		"chunks":                chunkCount,
		"vector_index_size":     s.vectorIndex.Size(),
		"embedding_dimensions":  s.vectorIndex.Dimensions(),
	}
	if n, err := s.keywordIndex.DocCount(); err == nil {
		resp["keyword_index_docs"] = n
	}
	if diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.VectorIndexPath,
		s.config.Storage.KeywordIndexPath,
	); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]any{
		"chunk_size":      s.config.Retrieval.ChunkSize,
		"chunk_overlap":   s.config.Retrieval.ChunkOverlap,
		"top_k":           s.config.Retrieval.TopK,
		"answer_provider": s.config.Answer.Provider,
		"categories":      models.Categories,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
