package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tipjar/internal/apperr"
	"tipjar/internal/model"
)

const maxErrorBody = 200

// APIClient reads the history from a running tipjar server.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type paymentsResponse struct {
	Payments *[]model.TipRecord `json:"payments"`
	Error    string             `json:"error"`
	Details  string             `json:"details"`
	Kind     string             `json:"kind"`
}

// FetchHistory calls GET /api/payments.
func (c *APIClient) FetchHistory(ctx context.Context) ([]model.TipRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/payments", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "Invalid API URL.", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Classify(err, c.baseURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Classify(err, c.baseURL)
	}

	var payload paymentsResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && payload.Error != "" {
			kind := apperr.ParseKind(payload.Kind)
			if kind == apperr.KindUnknown {
				kind = apperr.KindNodeServer
			}
			return nil, apperr.Wrap(kind, payload.Error, errors.New(orDefault(payload.Details, payload.Error)))
		}
		return nil, apperr.New(apperr.KindNodeServer,
			fmt.Sprintf("Failed to fetch payment history (HTTP %d): %s", resp.StatusCode, truncate(string(body), maxErrorBody)))
	}

	if decodeErr != nil {
		return nil, apperr.Wrap(apperr.KindDecode, "Invalid payment history response.", decodeErr)
	}
	if payload.Payments == nil {
		return nil, apperr.New(apperr.KindDecode, "Invalid payment history response: missing payments.")
	}
	return *payload.Payments, nil
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
