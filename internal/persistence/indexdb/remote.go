package indexdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// RemoteConfig configures an index that posts batches of rows to an HTTP
// ingest endpoint.
type RemoteConfig struct {
	Endpoint      string
	Token         string
	Dimension     string
	BatchSize     int
	FlushInterval time.Duration
	HTTPTimeout   time.Duration
	Logger        *log.Logger
}

type RemoteIndex struct {
	cfg        RemoteConfig
	httpClient *http.Client

	ch   chan remoteEvent
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun    atomic.Uint64
	dropRow    atomic.Uint64
	sendFailed atomic.Uint64
}

type remoteEvent struct {
	Kind      string `json:"kind"`
	Dimension string `json:"dimension"`
	Payload   any    `json:"payload"`
}

func OpenRemote(cfg RemoteConfig) (*RemoteIndex, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Dimension = strings.TrimSpace(cfg.Dimension)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("empty remote ingest endpoint")
	}
	if cfg.Dimension == "" {
		return nil, fmt.Errorf("empty dimension")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 500 * time.Millisecond
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}

	d := &RemoteIndex{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		ch:         make(chan remoteEvent, 32768),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop()
	}()
	return d, nil
}

// Close flushes queued rows and stops the sender.
func (d *RemoteIndex) Close() error {
	if d == nil {
		return nil
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.ch)
		d.wg.Wait()
	})
	return nil
}

func (d *RemoteIndex) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(d.ch),
		QueueCapacity: cap(d.ch),
		DropRunTotal:  d.dropRun.Load(),
		DropRowTotal:  d.dropRow.Load(),

		SendFailedTotal: d.sendFailed.Load(),
	}
}

func (d *RemoteIndex) RecordRun(r Run)            { d.enqueue("run", r) }
func (d *RemoteIndex) RecordSphere(r SphereRow)   { d.enqueue("sphere", r) }
func (d *RemoteIndex) RecordCity(r CityRow)       { d.enqueue("city", r) }
func (d *RemoteIndex) RecordHighway(r HighwayRow) { d.enqueue("highway", r) }
func (d *RemoteIndex) RecordRail(r RailRow)       { d.enqueue("rail", r) }

func (d *RemoteIndex) enqueue(kind string, payload any) {
	if d == nil || d.closed.Load() {
		return
	}
	select {
	case d.ch <- remoteEvent{Kind: kind, Dimension: d.cfg.Dimension, Payload: payload}:
	default:
		if kind == "run" {
			d.dropRun.Add(1)
		} else {
			d.dropRow.Add(1)
		}
		d.printf("remote index queue full; drop kind=%s dimension=%s", kind, d.cfg.Dimension)
	}
}

func (d *RemoteIndex) loop() {
	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]remoteEvent, 0, d.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := d.sendBatch(batch); err != nil {
			d.sendFailed.Add(uint64(len(batch)))
			d.printf("remote index flush failed batch=%d err=%v", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev, ok := <-d.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, ev)
			if len(batch) >= d.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (d *RemoteIndex) sendBatch(events []remoteEvent) error {
	body := struct {
		Events []remoteEvent `json:"events"`
	}{Events: events}
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequest(http.MethodPost, d.cfg.Endpoint, bytes.NewReader(buf))
		if err != nil {
			return err
		}
		req.Header.Set("content-type", "application/json")
		if d.cfg.Token != "" {
			req.Header.Set("x-lc-index-token", d.cfg.Token)
		}

		resp, err := d.httpClient.Do(req)
		if err == nil {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			err = fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		lastErr = err
		time.Sleep(time.Duration(100*(1<<attempt)) * time.Millisecond)
	}
	return lastErr
}

func (d *RemoteIndex) printf(format string, args ...any) {
	if d != nil && d.cfg.Logger != nil {
		d.cfg.Logger.Printf(format, args...)
	}
}
