package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

type fakeScanner struct {
	latest   *domain.ScanResult
	busy     bool
	accept   bool
	triggers atomic.Int32
}

func (f *fakeScanner) Latest() *domain.ScanResult { return f.latest }
func (f *fakeScanner) Busy() bool                 { return f.busy }
func (f *fakeScanner) Trigger(context.Context) bool {
	f.triggers.Add(1)
	return f.accept
}

type fakeJournal struct {
	records []domain.ScanRecord
}

func (f *fakeJournal) ResultsAfter(index uint64) ([]domain.ScanRecord, error) {
	var out []domain.ScanRecord
	for _, r := range f.records {
		if r.Index > index {
			out = append(out, r)
		}
	}
	return out, nil
}

func sampleResult(id string) domain.ScanResult {
	now := time.Now().UTC()
	return domain.NewOpportunitiesResult(id, []domain.ArbitrageOpportunity{{
		Symbol:               "SOLUSDC",
		PriceA:               decimal.NewFromInt(100),
		PriceB:               decimal.RequireFromString("100.5"),
		PriceDifference:      decimal.RequireFromString("0.5"),
		PercentageDifference: decimal.RequireFromString("0.5"),
		EstimatedProfit:      decimal.RequireFromString("98.495"),
	}}, now, now)
}

func TestServer_Latest(t *testing.T) {
	t.Run("before first scan", func(t *testing.T) {
		srv := NewServer("", nil, &fakeScanner{busy: true}, zap.NewNop())
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan/latest", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var view ScanView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.True(t, view.Busy)
		assert.Nil(t, view.Result)
		assert.Empty(t, view.Rows)
		assert.Equal(t, "waiting for the first scan", view.Message)
	})

	t.Run("with result", func(t *testing.T) {
		result := sampleResult("scan-1")
		srv := NewServer("", nil, &fakeScanner{latest: &result}, zap.NewNop())
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan/latest", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var view ScanView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.False(t, view.Busy)
		require.NotNil(t, view.Result)
		assert.Equal(t, "scan-1", view.Result.ID)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, "100.500000", view.Rows[0].PriceB)
		assert.Equal(t, "0.50%", view.Rows[0].Percentage)
		assert.Equal(t, "98.50", view.Rows[0].EstimatedProfit)
		assert.True(t, view.Rows[0].Positive)
	})

	t.Run("failure message", func(t *testing.T) {
		result := domain.NewFailureResult("scan-2", "incomplete quotes", time.Now(), time.Now())
		srv := NewServer("", nil, &fakeScanner{latest: &result}, zap.NewNop())
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan/latest", nil))

		var view ScanView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "scan failed, will retry: incomplete quotes", view.Message)
	})

	t.Run("wrong method", func(t *testing.T) {
		srv := NewServer("", nil, &fakeScanner{}, zap.NewNop())
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan/latest", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestServer_Refresh(t *testing.T) {
	tests := []struct {
		name   string
		method string
		accept bool
		code   int
		calls  int32
	}{
		{name: "accepted", method: http.MethodPost, accept: true, code: http.StatusAccepted, calls: 1},
		{name: "dropped while busy", method: http.MethodPost, accept: false, code: http.StatusConflict, calls: 1},
		{name: "get not allowed", method: http.MethodGet, accept: true, code: http.StatusMethodNotAllowed, calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := &fakeScanner{accept: tt.accept}
			srv := NewServer("", nil, scanner, zap.NewNop())
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, "/scan/refresh", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.calls, scanner.triggers.Load())
		})
	}
}

func TestServer_Index(t *testing.T) {
	srv := NewServer("", nil, &fakeScanner{}, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/scan/stream")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StreamUnavailable(t *testing.T) {
	srv := NewServer("", nil, &fakeScanner{}, zap.NewNop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan/stream", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_StreamReplaysJournal(t *testing.T) {
	journal := &fakeJournal{records: []domain.ScanRecord{
		{Index: 1, Result: sampleResult("scan-1")},
		{Index: 2, Result: domain.NewFailureResult("scan-2", "incomplete quotes", time.Now(), time.Now())},
		{Index: 3, Result: sampleResult("scan-3")},
	}}
	srv := NewServer("", journal, &fakeScanner{busy: true}, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/scan/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Last-Event-ID", "1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var ids, data []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(data) < 2 {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "id: "):
			ids = append(ids, strings.TrimPrefix(line, "id: "))
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}

	assert.Equal(t, []string{"2", "3"}, ids)
	require.Len(t, data, 2)

	var view ScanView
	require.NoError(t, json.Unmarshal([]byte(data[0]), &view))
	assert.Equal(t, "scan failed, will retry: incomplete quotes", view.Message)
	assert.True(t, view.Busy)
	require.NoError(t, json.Unmarshal([]byte(data[1]), &view))
	require.NotNil(t, view.Result)
	assert.Equal(t, "scan-3", view.Result.ID)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestServer_StartWaitsForOpenStreams(t *testing.T) {
	addr := freeAddr(t)
	journal := &fakeJournal{records: []domain.ScanRecord{{Index: 1, Result: sampleResult("scan-1")}}}
	srv := NewServer(addr, journal, &fakeScanner{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get("http://" + addr + "/scan/stream")
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "id: 1\n", line)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	// the stream handler has returned, so the body ends instead of waiting for the next poll
	_, err = io.ReadAll(reader)
	assert.NoError(t, err)
}

func TestParseLastEventID(t *testing.T) {
	srv := NewServer("", nil, nil, zap.NewNop())

	assert.Equal(t, uint64(0), srv.parseLastEventID("", ""))
	assert.Equal(t, uint64(7), srv.parseLastEventID(" 7 ", "3"))
	assert.Equal(t, uint64(3), srv.parseLastEventID("", "3"))
	assert.Equal(t, uint64(0), srv.parseLastEventID("abc", ""))
}
