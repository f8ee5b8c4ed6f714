package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/graph"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/ingestion"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/processing"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UploadRequest struct {
	Text  string `json:"text" validate:"required"`
	Title string `json:"title"`
}

type UploadResponse struct {
	DocumentID    string       `json:"document_id"`
	Title         string       `json:"title"`
	Chunks        int          `json:"chunks"`
	TripletsAdded int          `json:"triplets_added"`
	GraphData     *kg.Snapshot `json:"graph_data"`
}

type QueryRequest struct {
	Query string `json:"query" validate:"required"`
	Hops  int    `json:"hops" validate:"gte=0"`
	K     int    `json:"k" validate:"gte=0"`
}

type QueryResponse struct {
	FinalAnswer   string       `json:"final_answer"`
	RetrievedDocs []string     `json:"retrieved_docs"`
	GraphData     *kg.Snapshot `json:"graph_data"`
}

type TripletRequest struct {
	Source   string `json:"source" validate:"required"`
	Target   string `json:"target" validate:"required"`
	Relation string `json:"relation"`
}

type NeighborsResponse struct {
	Entity    string   `json:"entity"`
	Hops      int      `json:"hops"`
	Neighbors []string `json:"neighbors"`
}

var errBadRequest = errors.New("bad request")

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = s.readMultipartUpload(r)
	} else {
		err = s.decode(r, &req)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	meta := processing.Metadata{
		ID:         uuid.NewString(),
		Source:     processing.SourceUpload,
		Title:      req.Title,
		ImportedAt: time.Now().UTC(),
	}
	docs := processing.WithMeta(processing.ChunkDocuments(req.Text), meta)
	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, "document has no text")
		return
	}

	s.writeMu.Lock()
	added, err := s.extractor.BuildIndex(r.Context(), docs)
	s.writeMu.Unlock()
	if err != nil {
		s.logger.Error("indexing upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save graph")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		DocumentID:    meta.ID,
		Title:         req.Title,
		Chunks:        len(docs),
		TripletsAdded: added,
		GraphData:     s.store.Snapshot(),
	})
}

// readMultipartUpload accepts either a "file" part, whose text is extracted
// according to its extension, or a plain "text" field.
func (s *Server) readMultipartUpload(r *http.Request) (UploadRequest, error) {
	var req UploadRequest
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	req.Title = r.FormValue("title")
	req.Text = r.FormValue("text")

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	default:
		defer file.Close()
		if req.Title == "" {
			req.Title = header.Filename
		}
		text, err := extractUpload(file, header.Filename)
		if err != nil {
			return req, err
		}
		req.Text = text
	}

	if err := s.validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}

func extractUpload(src io.Reader, filename string) (string, error) {
	if !ingestion.Supported(filename) {
		return "", fmt.Errorf("%w: %s", errBadRequest, ingestion.ErrUnsupportedType)
	}
	tmp, err := os.CreateTemp("", "graph-rag-upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return ingestion.ExtractText(tmp.Name())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	k := req.K
	if k == 0 {
		k = s.retrieval.TopK
	}
	hops := req.Hops
	if hops == 0 {
		hops = s.retrieval.Hops
	}

	st, err := s.pipeline.RunState(r.Context(), &graph.State{Query: req.Query, K: k, Hops: hops})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entities := append(s.pipeline.Retriever().MatchedEntities(req.Query), st.Docs...)
	writeJSON(w, http.StatusOK, QueryResponse{
		FinalAnswer:   st.Answer,
		RetrievedDocs: st.Docs,
		GraphData:     s.store.Subgraph(entities),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	entity := mux.Vars(r)["entity"]
	hops := 1
	if v := r.URL.Query().Get("hops"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "hops must be a non-negative integer")
			return
		}
		hops = n
	}
	writeJSON(w, http.StatusOK, NeighborsResponse{
		Entity:    entity,
		Hops:      hops,
		Neighbors: s.store.Neighbors(entity, hops),
	})
}

func (s *Server) handleAddTriplet(w http.ResponseWriter, r *http.Request) {
	var req TripletRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.writeMu.Lock()
	s.store.AddTriplet(req.Source, req.Target, req.Relation)
	err := s.store.Save(r.Context())
	s.writeMu.Unlock()
	if err != nil {
		s.logger.Error("saving graph failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save graph")
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"nodes":  s.store.NodeCount(),
		"edges":  s.store.EdgeCount(),
	})
}

func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
