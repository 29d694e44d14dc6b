package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	appsCacheKey    = "agent::list-apps"
	appsCacheExpire = 300 // seconds
	maxErrorBody    = 512
)

type Session struct {
	ID      string         `json:"id"`
	AppName string         `json:"appName"`
	UserID  string         `json:"userId"`
	State   map[string]any `json:"state,omitempty"`
}

type runRequest struct {
	AppName    string  `json:"app_name"`
	UserID     string  `json:"user_id"`
	SessionID  string  `json:"session_id"`
	NewMessage Content `json:"new_message"`
	Streaming  bool    `json:"streaming"`
}

type NewClientParams struct {
	BaseURL string
	AppName string
	// deadline for a whole call, streams included
	Timeout time.Duration
	// ask the agent for token level partial events on /run_sse
	TokenStreaming bool
	// defaults to an otelhttp instrumented client
	HTTPClient     *http.Client
	CacheSizeBytes int
}

// Client talks to an ADK style agent api server.
type Client struct {
	baseURL        string
	appName        string
	timeout        time.Duration
	tokenStreaming bool
	httpClient     *http.Client
	cache          *freecache.Cache
}

func NewClient(params NewClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	cacheSize := params.CacheSizeBytes
	if cacheSize <= 0 {
		cacheSize = 512 * 1024
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL:        strings.TrimSuffix(params.BaseURL, "/"),
		appName:        params.AppName,
		timeout:        timeout,
		tokenStreaming: params.TokenStreaming,
		httpClient:     httpClient,
		cache:          freecache.NewCache(cacheSize),
	}
}

func (c *Client) AppName() string {
	return c.appName
}

func NewSessionID() string {
	return "session_" + uuid.NewString()
}

// ListApps returns the agents served by the api server. The list is cached for a few minutes.
func (c *Client) ListApps(ctx context.Context) ([]string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "agent.listApps")
	defer span.End()

	if cached, err := c.cache.Get([]byte(appsCacheKey)); err == nil {
		var apps []string
		if err = json.Unmarshal(cached, &apps); err == nil {
			log.Tracef("found agent apps in cache")
			return apps, nil
		}
		log.Errorf("failed to unmarshal agent apps from cache: %s", err)
	}

	respBytes, err := c.do(ctx, http.MethodGet, "/list-apps", nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list-apps-failed")
		return nil, err
	}

	var apps []string
	if err := json.Unmarshal(respBytes, &apps); err != nil {
		return nil, fmt.Errorf("unmarshal list-apps response: %w", err)
	}

	if err := c.cache.Set([]byte(appsCacheKey), respBytes, appsCacheExpire); err != nil {
		log.Errorf("failed to cache agent apps: %s", err)
	}
	return apps, nil
}

// Ping checks that the api server is up and serves the configured app.
func (c *Client) Ping(ctx context.Context) error {
	apps, err := c.ListApps(ctx)
	if err != nil {
		return err
	}
	for _, app := range apps {
		if app == c.appName {
			return nil
		}
	}
	return fmt.Errorf("agent app %q not served, available: %v", c.appName, apps)
}

func (c *Client) CreateSession(ctx context.Context, userID string, state map[string]any) (*Session, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "agent.createSession")
	defer span.End()

	if state == nil {
		state = map[string]any{}
	}
	sessionID := NewSessionID()
	span.SetAttributes(attribute.String("user_id", userID), attribute.String("session_id", sessionID))

	reqBody, err := json.Marshal(map[string]any{"state": state})
	if err != nil {
		return nil, fmt.Errorf("marshal session state: %w", err)
	}

	path := fmt.Sprintf("/apps/%s/users/%s/sessions/%s",
		url.PathEscape(c.appName), url.PathEscape(userID), url.PathEscape(sessionID))
	respBytes, err := c.do(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create-session-failed")
		return nil, err
	}

	session := &Session{}
	if err := json.Unmarshal(respBytes, session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.ID == "" {
		session.ID = sessionID
	}
	if session.UserID == "" {
		session.UserID = userID
	}
	if session.AppName == "" {
		session.AppName = c.appName
	}
	log.Debugf("agent session created: %s [user: %s]", session.ID, userID)
	return session, nil
}

// Run sends one message and waits for the whole run.
func (c *Client) Run(ctx context.Context, userID, sessionID, message string) ([]Event, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "agent.run")
	defer span.End()

	reqBody, err := c.runRequestBody(userID, sessionID, message, false)
	if err != nil {
		return nil, err
	}

	respBytes, err := c.do(ctx, http.MethodPost, "/run", reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run-failed")
		return nil, err
	}

	events, err := decodeRunEvents(respBytes)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("events", len(events)))
	return events, nil
}

// StreamMessage starts a /run_sse call. The returned channel yields fragments
// followed by exactly one terminal event (done or error) and is then closed.
// Cancelling ctx aborts the upstream request.
func (c *Client) StreamMessage(ctx context.Context, userID, sessionID, message string) (<-chan StreamEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	ctx, span := tracing.GlobalTracer.Start(ctx, "agent.runSSE")

	fail := func(err error) (<-chan StreamEvent, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run-sse-failed")
		span.End()
		cancel()
		return nil, err
	}

	reqBody, err := c.runRequestBody(userID, sessionID, message, c.tokenStreaming)
	if err != nil {
		return fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run_sse", bytes.NewReader(reqBody))
	if err != nil {
		return fail(fmt.Errorf("create run_sse request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("run_sse: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return fail(&StatusError{Endpoint: "/run_sse", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	out := make(chan StreamEvent)
	go func() {
		defer span.End()
		defer cancel()
		defer resp.Body.Close()
		readStream(resp.Body, out, ctx.Done())
	}()
	return out, nil
}

func (c *Client) runRequestBody(userID, sessionID, message string, streaming bool) ([]byte, error) {
	reqBody, err := json.Marshal(runRequest{
		AppName:   c.appName,
		UserID:    userID,
		SessionID: sessionID,
		NewMessage: Content{
			Role:  "user",
			Parts: []Part{{Text: message}},
		},
		Streaming: streaming,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal run request: %w", err)
	}
	return reqBody, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Tracef("calling agent api: %s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	return respBytes, nil
}

// decodeRunEvents accepts both a bare event array and an {"events": [...]} envelope.
func decodeRunEvents(respBytes []byte) ([]Event, error) {
	trimmed := bytes.TrimSpace(respBytes)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var events []Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("unmarshal run events: %w", err)
		}
		return events, nil
	}

	var envelope struct {
		Events []Event `json:"events"`
		Error  string  `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal run response: %w", err)
	}
	if envelope.Error != "" {
		return nil, &RunError{Message: envelope.Error}
	}
	return envelope.Events, nil
}

// FirstError returns the first error reported among events.
func FirstError(events []Event) error {
	for _, ev := range events {
		if err := ev.Err(); err != nil {
			return err
		}
	}
	return nil
}

// FinalText joins the text of the non partial events.
func FinalText(events []Event) string {
	var sb strings.Builder
	for _, ev := range events {
		if !ev.Partial {
			sb.WriteString(ev.Text())
		}
	}
	return sb.String()
}
