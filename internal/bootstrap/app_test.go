package bootstrap

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/llm"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/storage/db"
)

type scriptedCompleter struct {
	models []string
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.models = append(s.models, req.Model)
	if req.Model == "claude-3-haiku-20240307" {
		return "## Comparison\n" + req.System, nil
	}
	return "", errors.New("model unavailable")
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		ObjectStoreType: "local",
		LLMProvider:     "anthropic",
	}
}

func upload(t *testing.T, router *gin.Engine, fileName, content string) string {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return created.ID
}

func createAnalysis(router *gin.Engine, ids ...string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]any{"document_ids": ids})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestBuildRequiresAPIKey(t *testing.T) {
	_, err := Build(testConfig(t))
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestBuildWithAPIKeyUsesDefaultModels(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMAPIKey = "test-key"

	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	models := app.Orchestrator.Models()
	if models[0] != "claude-3-sonnet-20240229" || len(models) != 6 {
		t.Fatalf("unexpected model order: %v", models)
	}
}

func TestUploadAnalyzeAndOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	completer := &scriptedCompleter{}
	app, err := Build(testConfig(t), WithCompleter(completer))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	router := app.Router

	first := upload(t, router, "first.txt", "hello world")
	second := upload(t, router, "second.csv", "a,b\n1,2\n")

	resp := createAnalysis(router, first, second)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var analysis struct {
		ID        string  `json:"id"`
		Status    string  `json:"status"`
		Result    *string `json:"result"`
		Model     string  `json:"model"`
		Documents []struct {
			ID string `json:"id"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if analysis.Status != "completed" || analysis.Model != "claude-3-haiku-20240307" {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if analysis.Result == nil || !strings.Contains(*analysis.Result, "comparative analysis") {
		t.Fatalf("expected comparison result, got %v", analysis.Result)
	}
	if len(analysis.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(analysis.Documents))
	}
	if len(completer.models) != 2 || completer.models[0] != "claude-3-sonnet-20240229" {
		t.Fatalf("unexpected attempts: %v", completer.models)
	}

	overviewResp := httptest.NewRecorder()
	router.ServeHTTP(overviewResp, httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil))
	var summary struct {
		DocumentsCount int `json:"documents_count"`
		AnalysesCount  int `json:"analyses_count"`
		RecentAnalyses []struct {
			ID string `json:"id"`
		} `json:"recent_analyses"`
	}
	if err := json.NewDecoder(overviewResp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if summary.DocumentsCount != 2 || summary.AnalysesCount != 1 || len(summary.RecentAnalyses) != 1 || summary.RecentAnalyses[0].ID != analysis.ID {
		t.Fatalf("unexpected overview: %+v", summary)
	}
}

func TestAnalysisCreationIsRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.RateLimitPerSecond = 0.001
	cfg.RateLimitBurst = 1
	app, err := Build(cfg, WithCompleter(&scriptedCompleter{}))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	doc := upload(t, app.Router, "notes.txt", "hi")

	if resp := createAnalysis(app.Router, doc); resp.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", resp.Code)
	}
	resp := createAnalysis(app.Router, doc)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("second create: expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestBuildStoreRequiresBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.ObjectStoreType = "s3"
	if _, err := BuildStore(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestBuildClosesDatabaseWhenLaterStepFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.ExpectClose()

	prevConnect, prevMigrate := connectDB, runMigrations
	connectDB = func(context.Context, string, db.Options) (*sql.DB, error) { return sqlDB, nil }
	runMigrations = func(context.Context, *sql.DB) error { return nil }
	t.Cleanup(func() { connectDB, runMigrations = prevConnect, prevMigrate })

	cfg := testConfig(t)
	cfg.DatabaseURL = "postgres://app@localhost/docs"
	cfg.ObjectStoreType = "s3"

	if _, err := Build(cfg, WithCompleter(&scriptedCompleter{})); err == nil {
		t.Fatalf("expected store error without bucket")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("database pool was not closed: %v", err)
	}
}
