package sender

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"
)

const noteBatchesEndpoint = "/v1/ingest/note-batches"

// manifest describes a batch for the ingestion service.
type manifest struct {
	BatchID   string   `json:"batch_id"`
	Namespace string   `json:"namespace,omitempty"`
	Columns   []string `json:"columns"`
	Records   int      `json:"records"`
}

// HTTPSender implements Sink using HTTP multipart form upload: a JSON
// manifest field plus the records as a CSV file part.
type HTTPSender struct {
	client HTTPClient
	logger zerolog.Logger
}

// NewHTTPSender creates a new HTTP sender.
func NewHTTPSender(client HTTPClient, logger zerolog.Logger) *HTTPSender {
	return &HTTPSender{
		client: client,
		logger: logger,
	}
}

// Deliver transmits one batch to the remote service.
func (s *HTTPSender) Deliver(ctx context.Context, b Batch, md Metadata) error {
	if len(b.Rows) == 0 {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	m := manifest{
		BatchID:   b.ID,
		Namespace: b.Namespace,
		Columns:   b.Columns,
		Records:   len(b.Rows),
	}
	manifestJSON, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	manifestPart, err := writer.CreateFormField("manifest")
	if err != nil {
		return fmt.Errorf("create manifest field: %w", err)
	}
	if _, err := manifestPart.Write(manifestJSON); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	recordsPart, err := writer.CreateFormFile("records", b.ID+".csv")
	if err != nil {
		return fmt.Errorf("create records field: %w", err)
	}
	cw := csv.NewWriter(recordsPart)
	for i, row := range b.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}

	url := md.ServiceURL + noteBatchesEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+md.AuthKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Agent-Hostname", md.Hostname)
	req.Header.Set("X-Agent-OSArch", md.OSArch)
	req.Header.Set("X-Noteship-Batch-Id", b.ID)
	if b.Namespace != "" {
		req.Header.Set("X-Noteship-Namespace", b.Namespace)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug().
		Str("batch_id", b.ID).
		Int("records", len(b.Rows)).
		Msg("batch delivered")

	return nil
}
