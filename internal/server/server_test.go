package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindseek/leadscout/internal/dedup"
	"github.com/kindseek/leadscout/internal/model"
	"github.com/kindseek/leadscout/internal/pipeline"
	"github.com/kindseek/leadscout/internal/scorer"
)

type fakeStore struct {
	summary    *model.BatchSummary
	summaryErr error
}

func (s *fakeStore) KnownLeads(_ context.Context) ([]model.KnownLead, error) { return nil, nil }

func (s *fakeStore) InsertLead(_ context.Context, _ model.ProcessedLead) (string, error) {
	return "id-1", nil
}

func (s *fakeStore) PatchLead(_ context.Context, _ string, _ model.ProcessedLead) error { return nil }

func (s *fakeStore) UpdateScore(_ context.Context, _ string, _ int, _ model.Priority) error {
	return nil
}

func (s *fakeStore) SaveSummary(_ context.Context, summary *model.BatchSummary) error {
	s.summary = summary
	return nil
}

func (s *fakeStore) LastSummary(_ context.Context) (*model.BatchSummary, error) {
	return s.summary, s.summaryErr
}

func (s *fakeStore) Migrate(_ context.Context) error { return nil }
func (s *fakeStore) Close() error                    { return nil }

func newTestServer(st *fakeStore) *Server {
	p := pipeline.New(nil, st,
		dedup.New(dedup.DefaultConfig()),
		scorer.NewRuleScorer(scorer.DefaultRuleset()),
		nil, pipeline.Options{})
	return New(p, st, 0)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeStore{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestSummary_NoRuns(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeStore{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSummary(t *testing.T) {
	st := &fakeStore{summary: model.NewBatchSummary("run-7", time.Now().UTC())}
	srv := httptest.NewServer(newTestServer(st).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body model.BatchSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "run-7", body.RunID)
}

func TestSummary_StoreError(t *testing.T) {
	st := &fakeStore{summaryErr: assert.AnError}
	srv := httptest.NewServer(newTestServer(st).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRun(t *testing.T) {
	st := &fakeStore{}
	srv := httptest.NewServer(newTestServer(st).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body model.BatchSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.RunID)
	require.NotNil(t, st.summary)
	assert.Equal(t, body.RunID, st.summary.RunID)
}
