// Command streamload opens many concurrent subscriptions to the scan event stream and
// optionally keeps requesting manual scans, reporting delivered events as it goes.
package main

import (
	"bufio"
	"context"
	"flag"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type counters struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	scans       atomic.Int64
	refreshes   atomic.Int64
	dropped     atomic.Int64
}

func main() {
	var (
		baseURL      string
		connections  int
		testDuration time.Duration
		rampUp       time.Duration
		refreshEvery time.Duration
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "arbscan web address")
	flag.IntVar(&connections, "conns", 500, "number of concurrent stream subscribers")
	flag.DurationVar(&testDuration, "dur", time.Minute, "test duration (0 for until interrupted)")
	flag.DurationVar(&rampUp, "ramp", time.Second, "spread subscriber starts across this window")
	flag.DurationVar(&refreshEvery, "refresh", 0, "POST /scan/refresh at this interval (0 disables)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if connections <= 0 {
		logger.Fatal("invalid conns", zap.Int("conns", connections))
	}
	baseURL = strings.TrimRight(baseURL, "/")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if testDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, testDuration)
		defer cancel()
	}

	client := &http.Client{Transport: &http.Transport{
		MaxConnsPerHost:     connections + 10,
		MaxIdleConnsPerHost: connections + 10,
		DisableCompression:  true,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
	}}

	logger.Info("starting stream load",
		zap.String("url", baseURL), zap.Int("conns", connections),
		zap.Duration("duration", testDuration), zap.Duration("refresh", refreshEvery))

	var c counters
	var wg sync.WaitGroup
	start := time.Now()
	step := rampUp / time.Duration(connections)

	for i := 0; i < connections && ctx.Err() == nil; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subscribe(ctx, client, baseURL+"/scan/stream", &c)
		}()
		if step > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(step):
			}
		}
	}

	if refreshEvery > 0 {
		go refreshLoop(ctx, client, baseURL+"/scan/refresh", refreshEvery, &c)
	}

	report := time.NewTicker(5 * time.Second)
	defer report.Stop()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-report.C:
			logStatus(logger, "status", &c, time.Since(start))
		case <-done:
			logStatus(logger, "done", &c, time.Since(start))
			return
		}
	}
}

func subscribe(ctx context.Context, client *http.Client, url string, c *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.connectErrs.Add(1)
		return
	}
	c.connected.Add(1)

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if sc.Text() == "event: scan" {
			c.scans.Add(1)
		}
	}
	if ctx.Err() == nil {
		c.streamErrs.Add(1)
	}
}

func refreshLoop(ctx context.Context, client *http.Client, url string, every time.Duration, c *counters) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusConflict {
				c.dropped.Add(1)
				continue
			}
			c.refreshes.Add(1)
		}
	}
}

func logStatus(l *zap.Logger, msg string, c *counters, elapsed time.Duration) {
	l.Info(msg,
		zap.Int64("connected", c.connected.Load()),
		zap.Int64("connect_errs", c.connectErrs.Load()),
		zap.Int64("stream_errs", c.streamErrs.Load()),
		zap.Int64("scan_events", c.scans.Load()),
		zap.Int64("refreshes", c.refreshes.Load()),
		zap.Int64("refreshes_dropped", c.dropped.Load()),
		zap.Duration("elapsed", elapsed.Truncate(time.Second)))
}
