package curricula

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, repo Repo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := newTestService(&stubAnalyzer{}, repo)
	handler := NewHandler(svc, DefaultLimits())

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for _, name := range fileNames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte("file content")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestAnalyzeEndpointReturnsEnvelope(t *testing.T) {
	repo := NewMemoryRepo()
	router := newTestRouter(t, repo)

	body, contentType := multipartBody(t, map[string]string{
		"query":      "who knows go?",
		"request_id": "req-1",
		"user_id":    "user-1",
	}, "a.pdf", "b.pdf")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/curriculum", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != 200 || resp.Status != "success" || resp.RequestID != "req-1" {
		t.Fatalf("envelope = %+v", resp)
	}
	if resp.FilesProcessed != 2 || resp.Result.Kind != KindQueryAnalysis {
		t.Fatalf("envelope = %+v", resp)
	}

	if _, err := repo.GetByRequestID(context.Background(), "req-1"); err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
}

func TestAnalyzeEndpointRequiresIdentifiers(t *testing.T) {
	router := newTestRouter(t, NewMemoryRepo())

	body, contentType := multipartBody(t, map[string]string{"user_id": "user-1"}, "a.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/curriculum", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing request_id", w.Code)
	}
}

func TestAnalyzeEndpointRejectsBadExtension(t *testing.T) {
	router := newTestRouter(t, NewMemoryRepo())

	body, contentType := multipartBody(t, map[string]string{
		"request_id": "req-1",
		"user_id":    "user-1",
	}, "virus.exe")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/curriculum", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(ErrorCodeValidation)) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestHistoryEndpointShape(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		record := testRecord("req-"+string(rune('a'+i)), "user-1", now.Add(time.Duration(i)*time.Second))
		if err := repo.Save(context.Background(), record); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/curriculum/history/user-1?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID  string       `json:"user_id"`
		History []RecordView `json:"history"`
		Total   int          `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "user-1" || resp.Total != 2 || len(resp.History) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.History[0].RequestID != "req-c" {
		t.Fatalf("order = %q, want newest first", resp.History[0].RequestID)
	}
}

func TestHistoryEndpointRejectsBadLimit(t *testing.T) {
	router := newTestRouter(t, NewMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/curriculum/history/user-1?limit=zero", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetRecordEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, NewMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/curriculum/requests/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetRecordEndpointReturnsView(t *testing.T) {
	repo := NewMemoryRepo()
	record := testRecord("req-1", "user-1", time.Now().UTC())
	if err := repo.Save(context.Background(), record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/curriculum/requests/req-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var view RecordView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.RequestID != "req-1" || view.Status != StatusCompleted {
		t.Fatalf("view = %+v", view)
	}
	if view.Timestamp <= 0 {
		t.Fatalf("timestamp = %v", view.Timestamp)
	}
}
