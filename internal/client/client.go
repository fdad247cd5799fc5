// Package client talks to the hiring pipeline API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

type Client struct {
	baseURL string
	http    *http.Client
	actor   string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithActor sends actor as X-Actor so stage changes record who made them.
func WithActor(actor string) Option {
	return func(c *Client) { c.actor = actor }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a failed call. It unwraps to the matching pipeline error.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
	kind       error
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 && string(e.Details) != "null" {
		return fmt.Sprintf("api %d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

// Board is a job together with its grouped applications.
type Board struct {
	Job    models.Job    `json:"job"`
	Stages pipeline.View `json:"stages"`
}

// ApplicationQuery mirrors the list filters of the API.
type ApplicationQuery struct {
	JobID     uuid.UUID
	Stage     string
	Query     string
	MinRating int
}

func (c *Client) Pipeline(ctx context.Context, jobID uuid.UUID, query string) (*Board, error) {
	path := "/api/jobs/" + jobID.String() + "/pipeline"
	if query != "" {
		path += "?" + url.Values{"q": {query}}.Encode()
	}
	var b Board
	if err := c.do(ctx, http.MethodGet, path, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) Job(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+id.String(), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) Applications(ctx context.Context, q ApplicationQuery) ([]models.Application, error) {
	v := url.Values{}
	if q.JobID != uuid.Nil {
		v.Set("jobId", q.JobID.String())
	}
	if q.Stage != "" {
		v.Set("stage", q.Stage)
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.MinRating > 0 {
		v.Set("minRating", strconv.Itoa(q.MinRating))
	}
	path := "/api/applications"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var apps []models.Application
	if err := c.do(ctx, http.MethodGet, path, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) Application(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := c.do(ctx, http.MethodGet, "/api/applications/"+id.String(), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// MoveApplication asks the server to move an application to stage to.
func (c *Client) MoveApplication(ctx context.Context, id uuid.UUID, to, note string) (*models.Application, error) {
	body := map[string]string{"to": to}
	if note != "" {
		body["note"] = note
	}
	var app models.Application
	if err := c.do(ctx, http.MethodPatch, "/api/applications/"+id.String()+"/status", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actor != "" {
		req.Header.Set("X-Actor", c.actor)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "invalid response: " + err.Error(), kind: kindOf(resp.StatusCode, "")}
	}
	if resp.StatusCode >= 400 || env.Status == "error" {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message, Details: env.Errors, kind: kindOf(resp.StatusCode, env.Message)}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// kindOf maps the server's error message back onto the pipeline taxonomy.
func kindOf(status int, message string) error {
	switch message {
	case "NotFound":
		return pipeline.ErrNotFound
	case "InvalidStage":
		return pipeline.ErrInvalidStage
	case "NoChange":
		return pipeline.ErrNoChange
	case "ValidationError":
		return pipeline.ErrValidation
	case "Conflict":
		return pipeline.ErrConflict
	}
	switch {
	case status == http.StatusNotFound:
		return pipeline.ErrNotFound
	case status == http.StatusConflict:
		return pipeline.ErrConflict
	case status >= 500:
		return pipeline.ErrPersistence
	}
	return errors.New(http.StatusText(status))
}
