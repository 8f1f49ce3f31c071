/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	applog "pookalam/internal/log"
	"pookalam/internal/version"
)

const (
	queueSize    = 64
	flushTimeout = 500 * time.Millisecond
)

// Client posts events from a background goroutine. Event never blocks:
// when the queue is full the event is dropped.
type Client struct {
	cfg      Config
	log      *slog.Logger
	http     *http.Client
	q        chan []byte
	inflight atomic.Int64
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
	builds   buildStats
}

// New constructs a client and starts its sender.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RegenInterval <= 0 {
		cfg.RegenInterval = defaultRegenInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		http:   &http.Client{Timeout: cfg.Timeout},
		q:      make(chan []byte, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	go c.loop()
	return c
}

// Enabled reports whether events will be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a JSON event. props must not carry personal data; they are
// merged over the standard fields.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" || c.ctx.Err() != nil {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.debug("telemetry event not encodable", slog.String("name", name), slog.Any("err", err))
		return
	}
	c.inflight.Add(1)
	select {
	case c.q <- body:
	default:
		c.inflight.Add(-1)
	}
}

// Flush sends the session summary and waits briefly for queued events.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.summary()
	deadline := time.NewTimer(flushTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for c.inflight.Load() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

// Close stops the sender. Queued events are dropped.
func (c *Client) Close() { c.once.Do(c.cancel) }

func (c *Client) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case body := <-c.q:
			err := c.post(c.ctx, c.cfg.EventsURL, "application/json", body)
			c.inflight.Add(-1)
			if err != nil {
				c.debug("telemetry send failed", slog.Any("err", err))
			} else {
				c.debug("telemetry event sent")
			}
		}
	}
}

// UploadCrash posts a crash report to the crash endpoint. It returns when
// the upload finished or timed out, so it is safe to call right before exit.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	if err := c.post(context.Background(), c.cfg.CrashURL, "text/plain; charset=utf-8", report); err != nil {
		c.debug("crash upload failed", slog.Any("err", err))
		return
	}
	c.debug("crash report uploaded")
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "pookalam/"+version.Version)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("telemetry endpoint: %s", resp.Status)
	}
	return nil
}

func (c *Client) debug(msg string, attrs ...any) {
	if c.cfg.DebugLogging {
		c.log.Debug(msg, attrs...)
	}
}
