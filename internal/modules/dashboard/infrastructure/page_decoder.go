package infrastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"marketDash/internal/modules/dashboard/application/port"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/shared/normalization"
)

type pagePayload struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Total any `json:"total"`
	} `json:"meta"`
}

func decodePage(body io.Reader) (*domain.Page, error) {
	var payload pagePayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}

	records := []domain.Record{}
	if len(payload.Data) > 0 && string(payload.Data) != "null" {
		var items []any
		if err := json.Unmarshal(payload.Data, &items); err != nil {
			return nil, fmt.Errorf("%w: data is not an array", port.ErrMalformedResponse)
		}
		records = make([]domain.Record, 0, len(items))
		for _, item := range items {
			if row, ok := item.(map[string]any); ok {
				records = append(records, domain.Record(row))
			}
		}
		if skipped := len(items) - len(records); skipped > 0 {
			slog.Debug("forwarder page skipped non-object rows", slog.Int("skipped", skipped))
		}
	}

	total := normalization.AsInt(payload.Meta.Total)
	if payload.Meta.Total == nil {
		total = len(records)
	}
	return &domain.Page{Data: records, Total: total}, nil
}

// decodeErrorMessage extracts the human readable part of an error body: message first, then the
// forwarder's error envelope.
func decodeErrorMessage(body []byte) string {
	var envelope struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if message := strings.TrimSpace(normalization.AsString(envelope.Message)); message != "" {
		return message
	}
	return strings.TrimSpace(normalization.AsString(envelope.Error))
}
