// Package dataverse implements the budget store over the Dataverse Web API
// (OData v4).
package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to a single Dataverse entity set.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiRoot    string
	entitySet  string
	retry      service.RetryOptions
}

var _ service.BudgetStore = (*Client)(nil)

// NewClient creates a client authenticated with OAuth2 client credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.tokenURL(),
		Scopes:       []string{cfg.scope()},
	}

	httpClient := cc.Client(ctx)
	httpClient.Timeout = cfg.Timeout

	return NewClientWithHTTP(cfg, httpClient), nil
}

// NewClientWithHTTP creates a client that sends requests through httpClient
// as-is. Authentication is the caller's concern.
func NewClientWithHTTP(cfg Config, httpClient *http.Client) *Client {
	logger := slog.Default().With("component", "dataverse")
	retry := cfg.Retry
	retry.Logger = logger
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiRoot:    cfg.apiRoot(),
		entitySet:  cfg.entitySet(),
		retry:      retry,
	}
}

// ListBudgets implements service.BudgetStore. Throttling and server errors
// are retried with backoff.
func (c *Client) ListBudgets(ctx context.Context, opts service.ListOptions) ([]service.Record, error) {
	endpoint := c.apiRoot + "/" + c.entitySet
	if q := odataQuery(opts); q != "" {
		endpoint += "?" + q
	}

	var records []service.Record
	err := common.WithRetry(ctx, func() error {
		var listErr error
		records, listErr = c.list(ctx, endpoint)
		return listErr
	}, c.retry)
	if err != nil {
		return nil, userFacing(err)
	}

	c.logger.Debug("Listed records", "entity_set", c.entitySet, "count", len(records))
	return records, nil
}

func (c *Client) list(ctx context.Context, endpoint string) ([]service.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setODataHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.entitySet, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var body struct {
		Value []service.Record `json:"value"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Value, nil
}

// UpdateBudget implements service.BudgetStore. Exactly one request is sent.
func (c *Client) UpdateBudget(ctx context.Context, id string, patch service.Patch) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("budget id is required")
	}

	payload, err := json.Marshal(encodePatch(patch))
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s(%s)", c.apiRoot, c.entitySet, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	setODataHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	// Update only; never create a record through upsert.
	req.Header.Set("If-Match", "*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update %s(%s): %w", c.entitySet, id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return userFacing(responseError(resp))
	}

	c.logger.Debug("Updated record", "entity_set", c.entitySet, "id", id)
	return nil
}

// odataQuery renders the system query options. Values are escaped as path
// segments so spaces become %20 rather than '+'.
func odataQuery(opts service.ListOptions) string {
	var parts []string
	if len(opts.Select) > 0 {
		parts = append(parts, "$select="+url.PathEscape(strings.Join(opts.Select, ",")))
	}
	if len(opts.OrderBy) > 0 {
		clauses := make([]string, len(opts.OrderBy))
		for i, ob := range opts.OrderBy {
			dir := ob.Direction
			if dir == "" {
				dir = service.SortAscending
			}
			clauses[i] = ob.Attribute + " " + string(dir)
		}
		parts = append(parts, "$orderby="+url.PathEscape(strings.Join(clauses, ",")))
	}
	if opts.Top > 0 {
		parts = append(parts, "$top="+strconv.Itoa(opts.Top))
	}
	return strings.Join(parts, "&")
}

// encodePatch converts decimal values into JSON numbers.
func encodePatch(patch service.Patch) map[string]any {
	body := make(map[string]any, len(patch))
	for k, v := range patch {
		if d, ok := v.(decimal.Decimal); ok {
			body[k] = json.Number(d.String())
			continue
		}
		body[k] = v
	}
	return body
}

func setODataHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
}

// responseError builds an APIError from a failed response, wrapping it as
// retryable when the store asks the client to back off.
func responseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &common.RetryableError{
			Err:        apiErr,
			RetryAfter: retryAfter(resp.Header),
			Retryable:  true,
		}
	}
	return apiErr
}

// userFacing attaches the server message, when there is one, as the
// user-visible message of err.
func userFacing(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return common.NewUserError(apiErr.Message, err)
	}
	return err
}
