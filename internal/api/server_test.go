// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dferraz/fiscalis/internal/config"
	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: 5 * time.Second},
		Mongo:  config.MongoConfig{URL: "mongodb://localhost:27017", Database: "ibamadb_test", Timeout: time.Second},
		API: config.APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Ingest:  config.IngestConfig{MaxUploadBytes: 1 << 20, MaxErrorMessages: 10},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

type mockIngestor struct {
	summary *ingest.Summary
	err     error

	gotFilename string
}

func (m *mockIngestor) Run(_ context.Context, r io.Reader, filename string) (*ingest.Summary, error) {
	io.Copy(io.Discard, r)
	m.gotFilename = filename
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

type mockOffenderStore struct {
	items   []models.Offender
	stats   *models.OffenderStats
	byState []models.StateCount
	err     error

	gotFilter database.OffenderFilter
	gotPage   int
	gotSize   int
}

func (m *mockOffenderStore) List(_ context.Context, filter database.OffenderFilter, page, size int) (int64, []models.Offender, error) {
	m.gotFilter, m.gotPage, m.gotSize = filter, page, size
	return int64(len(m.items)), m.items, m.err
}

func (m *mockOffenderStore) Count(_ context.Context, filter database.OffenderFilter) (int64, error) {
	m.gotFilter = filter
	return int64(len(m.items)), m.err
}

func (m *mockOffenderStore) Stats(_ context.Context) (*models.OffenderStats, error) {
	return m.stats, m.err
}

func (m *mockOffenderStore) CountByState(_ context.Context) ([]models.StateCount, error) {
	return m.byState, m.err
}

type mockInfractionStore struct {
	inserted     int
	count        int64
	items        []models.Infraction
	doc          *models.Infraction
	framings     *models.InfractionWithFramings
	framingsMany []models.InfractionWithFramings
	specimens    []models.InfractionWithSpecimens
	detailed     []models.DetailedInfraction
	biomeStats   []models.BiomeStats
	healthCounts []models.HealthEffectCount
	err          error

	gotSequences []int64
	gotDetailed  database.DetailedQuery
}

func (m *mockInfractionStore) Insert(_ context.Context, docs []models.Infraction) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.inserted > 0 {
		return m.inserted, nil
	}
	return len(docs), nil
}

func (m *mockInfractionStore) Count(_ context.Context) (int64, error) {
	return m.count, m.err
}

func (m *mockInfractionStore) List(_ context.Context, page, size int) (int64, []models.Infraction, error) {
	return int64(len(m.items)), m.items, m.err
}

func (m *mockInfractionStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Infraction, error) {
	if m.doc == nil && m.err == nil {
		return nil, database.ErrNotFound
	}
	return m.doc, m.err
}

func (m *mockInfractionStore) ByDate(_ context.Context, day time.Time) ([]models.Infraction, error) {
	return m.items, m.err
}

func (m *mockInfractionStore) Nearest(_ context.Context, longitude, latitude, radiusMeters float64) (*models.Infraction, error) {
	if m.doc == nil && m.err == nil {
		return nil, database.ErrNotFound
	}
	return m.doc, m.err
}

func (m *mockInfractionStore) WithFramings(_ context.Context, sequence int64) (*models.InfractionWithFramings, error) {
	if m.framings == nil && m.err == nil {
		return nil, database.ErrNotFound
	}
	return m.framings, m.err
}

func (m *mockInfractionStore) WithFramingsMany(_ context.Context, sequences []int64) ([]models.InfractionWithFramings, error) {
	m.gotSequences = sequences
	return m.framingsMany, m.err
}

func (m *mockInfractionStore) SpecimensByBiome(_ context.Context, from, to time.Time, biome string, skip, limit int) ([]models.InfractionWithSpecimens, error) {
	return m.specimens, m.err
}

func (m *mockInfractionStore) Detailed(_ context.Context, q database.DetailedQuery) (int64, []models.DetailedInfraction, error) {
	m.gotDetailed = q
	return int64(len(m.detailed)), m.detailed, m.err
}

func (m *mockInfractionStore) BiomeStats(_ context.Context, q database.BiomeStatsQuery) ([]models.BiomeStats, error) {
	return m.biomeStats, m.err
}

func (m *mockInfractionStore) HealthEffectCounts(_ context.Context) ([]models.HealthEffectCount, error) {
	return m.healthCounts, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// newTestServer builds a Server over mocks. Callers set only the stores
// their routes touch.
func newTestServer(t *testing.T, mutate func(s *Server)) *Server {
	t.Helper()
	s := &Server{
		cfg:         testConfig(),
		ingestor:    &mockIngestor{summary: &ingest.Summary{}},
		offenders:   &mockOffenderStore{},
		infractions: &mockInfractionStore{},
		pinger:      &mockPinger{},
	}
	if mutate != nil {
		mutate(s)
	}
	return s
}

// doRequest routes one request through the full middleware stack.
func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// decodeResponse unwraps the standard envelope.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (json.RawMessage, *APIError) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return resp.Data, resp.Error
}

// multipartBody builds a multipart form carrying one uploaded file.
func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}
