package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/safego"
)

// IdempotencyHeader carries a fresh UUID on every webhook request so that
// receivers can discard redelivered batches.
const IdempotencyHeader = "Idempotency-Key"

// WebhookShipper POSTs records as JSON. With a batch size above zero records
// are queued and sent as a JSON array when the batch fills or the flush
// interval elapses.
type WebhookShipper struct {
	url           string
	headers       map[string]string
	timeout       time.Duration
	batchSize     int
	flushInterval time.Duration

	client    *http.Client
	batchCh   chan *models.ActivityLog
	batch     []*models.ActivityLog
	closeCh   chan struct{}
	closeOnce sync.Once
	done      <-chan struct{}
}

// NewWebhookShipper creates a new webhook shipper
func NewWebhookShipper(cfg *config.AuditWebhookConfig) (*WebhookShipper, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	flush := time.Duration(cfg.FlushInterval) * time.Second
	if flush <= 0 {
		flush = 5 * time.Second
	}

	ws := &WebhookShipper{
		url:           cfg.URL,
		headers:       cfg.Headers,
		timeout:       timeout,
		batchSize:     cfg.BatchSize,
		flushInterval: flush,
		client:        &http.Client{Timeout: timeout},
		batchCh:       make(chan *models.ActivityLog, 1000),
		closeCh:       make(chan struct{}),
	}

	if ws.batchSize > 0 {
		ws.done = safego.Go("audit-webhook-batcher", ws.processBatches)
	}

	return ws, nil
}

// processBatches owns ws.batch; nothing else touches it.
func (ws *WebhookShipper) processBatches() {
	ticker := time.NewTicker(ws.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case record := <-ws.batchCh:
			ws.batch = append(ws.batch, record)
			if len(ws.batch) >= ws.batchSize {
				ws.flushBatch()
			}
		case <-ticker.C:
			ws.flushBatch()
		case <-ws.closeCh:
			for {
				select {
				case record := <-ws.batchCh:
					ws.batch = append(ws.batch, record)
				default:
					ws.flushBatch()
					return
				}
			}
		}
	}
}

func (ws *WebhookShipper) flushBatch() {
	if len(ws.batch) == 0 {
		return
	}
	defer func() { ws.batch = ws.batch[:0] }()

	data, err := json.Marshal(ws.batch)
	if err != nil {
		slog.Error("failed to marshal audit batch", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ws.timeout)
	defer cancel()

	if err := ws.sendRequest(ctx, data); err != nil {
		slog.Warn("failed to send audit batch", "url", ws.url, "records", len(ws.batch), "error", err)
	}
}

// Ship sends a record to the webhook, or queues it when batching is enabled.
func (ws *WebhookShipper) Ship(ctx context.Context, record *models.ActivityLog) error {
	if ws.batchSize > 0 {
		select {
		case ws.batchCh <- record:
			return nil
		default:
			// queue full, send directly
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}
	return ws.sendRequest(ctx, data)
}

func (ws *WebhookShipper) sendRequest(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyHeader, uuid.NewString())
	for k, v := range ws.headers {
		req.Header.Set(k, v)
	}

	resp, err := ws.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close flushes queued records and stops the batcher.
func (ws *WebhookShipper) Close() error {
	ws.closeOnce.Do(func() {
		close(ws.closeCh)
		if ws.done != nil {
			<-ws.done
		}
	})
	return nil
}
