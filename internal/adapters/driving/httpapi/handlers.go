package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// textRequest is the JSON body accepted by evaluate and classify.
type textRequest struct {
	Text string `json:"text"`
}

// upload is a document received by the API.
type upload struct {
	text     string
	name     string
	mimeType string
	content  []byte
}

type classifyResponse struct {
	DocumentType string `json:"documentType"`
	DisplayName  string `json:"displayName"`
	Supported    bool   `json:"supported"`
}

type checklistSummary struct {
	DocumentType string `json:"documentType"`
	DisplayName  string `json:"displayName"`
	Rules        int    `json:"rules"`
}

type ruleResponse struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	AppliesWhen []string `json:"appliesWhen,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Evaluation.Evaluate(r.Context(), up.text)
	if err != nil {
		writeError(w, err)
		return
	}

	if annotate, _ := strconv.ParseBool(r.URL.Query().Get("annotate")); annotate {
		s.writeAnnotated(w, r, up, result)
		return
	}

	if s.ports.Reports == nil {
		writeError(w, fmt.Errorf("report rendering is not configured"))
		return
	}
	data, err := s.ports.Reports.JSON(result)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (s *Server) writeAnnotated(w http.ResponseWriter, r *http.Request, up *upload, result *domain.EvaluationResult) {
	if s.ports.Reports == nil || up.content == nil || !s.ports.Reports.CanAnnotate(up.mimeType) {
		writeError(w, fmt.Errorf("%w: annotation needs an uploaded document of a supported type", domain.ErrUnsupportedType))
		return
	}

	out, err := s.ports.Reports.Annotate(r.Context(), up.mimeType, up.content, result)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", up.mimeType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": annotatedName(up.name)}))
	w.WriteHeader(http.StatusOK)
	w.Write(out) //nolint:errcheck
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	docType := s.ports.Evaluation.Classify(r.Context(), up.text)
	writeJSON(w, http.StatusOK, classifyResponse{
		DocumentType: string(docType),
		DisplayName:  docType.DisplayName(),
		Supported:    docType.IsKnown(),
	})
}

func (s *Server) handleChecklists(w http.ResponseWriter, _ *http.Request) {
	types := s.ports.Evaluation.DocumentTypes()
	out := make([]checklistSummary, 0, len(types))
	for _, t := range types {
		rules, err := s.ports.Evaluation.Checklist(t)
		if err != nil {
			continue
		}
		out = append(out, checklistSummary{DocumentType: string(t), DisplayName: t.DisplayName(), Rules: len(rules)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	docType := domain.ParseDocumentType(chi.URLParam(r, "type"))
	rules, err := s.ports.Evaluation.Checklist(docType)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		out[i] = ruleResponse{
			ID:          rule.ID,
			Description: rule.Description,
			Required:    rule.Required,
			AppliesWhen: rule.AppliesWhen,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// readUpload accepts a multipart "file" field or a JSON text body.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readMultipart(r)
	}

	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: request body must be JSON with a text field", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	return &upload{text: req.Text}, nil
}

func (s *Server) readMultipart(r *http.Request) (*upload, error) {
	if s.ports.Documents == nil {
		return nil, fmt.Errorf("%w: file uploads are not enabled", domain.ErrInvalidInput)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidInput)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", domain.ErrInvalidInput, err)
	}

	mimeType := normalisers.DetectMIME(header.Filename)
	doc, err := s.ports.Documents.Read(r.Context(), domain.RawDocument{
		URI:      header.Filename,
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}

	return &upload{text: doc.Content, name: header.Filename, mimeType: mimeType, content: content}, nil
}

func annotatedName(name string) string {
	if name == "" {
		return "annotated.docx"
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i] + ".annotated" + name[i:]
	}
	return name + ".annotated"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownDocumentType), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrRetrievalUnavailable), errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrVectorIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
