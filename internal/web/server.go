// Package web serves the scan results: an HTML page, the latest result as JSON and an SSE stream of the journal.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/render"
)

const (
	journalPollInterval = 2 * time.Second
	heartbeatInterval   = 20 * time.Second
	defaultCertCacheDir = "cert-cache"
)

type scanReader interface {
	ResultsAfter(index uint64) ([]domain.ScanRecord, error)
}

type scanControl interface {
	Latest() *domain.ScanResult
	Busy() bool
	Trigger(ctx context.Context) bool
}

// ScanView payload of /scan/latest and of every stream event.
type ScanView struct {
	Busy    bool               `json:"busy"`
	Message string             `json:"message"`
	Result  *domain.ScanResult `json:"result,omitempty"`
	Rows    []render.Row       `json:"rows"`
}

// Server exposes HTTP endpoints serving the HTML UI, the latest result and an SSE stream.
type Server struct {
	Addr    string
	Store   scanReader
	Scanner scanControl
	l       *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, store scanReader, scanner scanControl, l *zap.Logger) *Server {
	return &Server{Addr: addr, Store: store, Scanner: scanner, l: l}
}

// Handler returns the router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/scan/latest", s.handleLatest)
	mux.HandleFunc("/scan/stream", s.handleStream)
	mux.HandleFunc("/scan/refresh", s.handleRefresh)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
// It returns after the in-flight requests, open streams included, have finished.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.l.Info("web server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

// StartWithAutoTLS runs an HTTPS server with ACME certificates for domains.
// A plain HTTP server on :80 answers the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = defaultCertCacheDir
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Warn("acme server shutdown", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Warn("https server shutdown", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("acme server", zap.Error(err))
		}
	}()

	s.l.Info("web server listening with automatic TLS", zap.String("addr", s.Addr), zap.Strings("domains", domains))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Scanner == nil {
		http.Error(w, "scanner not available", http.StatusServiceUnavailable)
		return
	}

	view := newScanView(s.Scanner.Latest(), s.Scanner.Busy())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		s.l.Warn("encode latest scan", zap.Error(err))
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Scanner == nil {
		http.Error(w, "scanner not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !s.Scanner.Trigger(r.Context()) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"accepted":false}`)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, `{"accepted":true}`)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "scan journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// comment heartbeat keeps proxies from closing an idle stream
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(journalPollInterval)
	defer pollTicker.Stop()

	lastIndex := s.parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendResults := func() error {
		records, err := s.Store.ResultsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			result := record.Result
			payload, err := json.Marshal(newScanView(&result, s.busy()))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: scan\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendResults(); err != nil {
		http.Error(w, "failed to load scan journal", http.StatusInternalServerError)
		s.l.Warn("scan stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendResults(); err != nil {
				s.l.Warn("scan stream poll", zap.Error(err))
			}
		}
	}
}

func (s *Server) busy() bool {
	return s.Scanner != nil && s.Scanner.Busy()
}

func (s *Server) parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		s.l.Debug("invalid last event id", zap.String("id", idStr), zap.Error(err))
		return 0
	}
	return id
}

func newScanView(result *domain.ScanResult, busy bool) ScanView {
	view := ScanView{Busy: busy, Result: result, Rows: []render.Row{}}
	if result == nil {
		view.Message = "waiting for the first scan"
		return view
	}
	view.Message = result.UserMessage()
	view.Rows = render.Rows(*result)
	return view
}
