// Package postman reads workspaces, collections, environments and global
// variables from the Postman REST API.
package postman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/blackcoderx/brunomigrate/pkg/httpclient"
	"github.com/blackcoderx/brunomigrate/pkg/logging"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ErrUnexpectedResponse is returned when a 2xx body does not have the
// documented shape.
var ErrUnexpectedResponse = errors.New("unexpected response body")

// Service is a thin typed accessor over the Postman API. Every method issues
// exactly one GET; failures come back as *httpclient.Error.
type Service struct {
	client  *httpclient.Client
	baseURL string
	logger  *slog.Logger
}

// NewService creates a Service. The client is expected to carry the API key
// as a bearer token.
func NewService(client *httpclient.Client, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrDiscard(logger),
	}
}

// ListWorkspaces returns the workspaces visible to the API key, together with
// the raw "workspaces" array as sent by the server.
func (s *Service) ListWorkspaces(ctx context.Context) ([]WorkspaceSummary, json.RawMessage, error) {
	body, err := s.get(ctx, "workspaces")
	if err != nil {
		return nil, nil, err
	}

	raw := json.RawMessage("[]")
	if res := gjson.GetBytes(body, "workspaces"); res.Exists() {
		if !res.IsArray() {
			return nil, nil, fmt.Errorf("workspaces: %w", ErrUnexpectedResponse)
		}
		raw = json.RawMessage(res.Raw)
	}

	var workspaces []WorkspaceSummary
	if err := json.Unmarshal(raw, &workspaces); err != nil {
		return nil, nil, fmt.Errorf("parsing workspaces: %w", err)
	}
	return workspaces, raw, nil
}

// GetWorkspace returns the detail of one workspace.
func (s *Service) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	body, err := s.get(ctx, "workspaces", id)
	if err != nil {
		return nil, err
	}

	res := gjson.GetBytes(body, "workspace")
	if !res.IsObject() {
		return nil, fmt.Errorf("workspace %s: %w", id, ErrUnexpectedResponse)
	}
	var ws Workspace
	if err := json.Unmarshal([]byte(res.Raw), &ws); err != nil {
		return nil, fmt.Errorf("parsing workspace %s: %w", id, err)
	}
	return &ws, nil
}

// GetCollection returns the collection document, without the
// {"collection": ...} envelope.
func (s *Service) GetCollection(ctx context.Context, id string) (json.RawMessage, error) {
	body, err := s.get(ctx, "collections", id)
	if err != nil {
		return nil, err
	}
	return unwrap(body, "collection"), nil
}

// GetEnvironment returns the environment document, without the
// {"environment": ...} envelope.
func (s *Service) GetEnvironment(ctx context.Context, id string) (json.RawMessage, error) {
	body, err := s.get(ctx, "environments", id)
	if err != nil {
		return nil, err
	}
	return unwrap(body, "environment"), nil
}

// GetGlobalVariables fetches the workspace detail and returns only its
// global variable values. A workspace without globals yields nil.
func (s *Service) GetGlobalVariables(ctx context.Context, workspaceID string) (json.RawMessage, error) {
	body, err := s.get(ctx, "workspaces", workspaceID)
	if err != nil {
		return nil, err
	}
	return ExtractGlobals(body), nil
}

// ListCollections returns every collection visible to the API key.
func (s *Service) ListCollections(ctx context.Context) ([]CollectionSummary, error) {
	body, err := s.get(ctx, "collections")
	if err != nil {
		return nil, err
	}

	res := gjson.GetBytes(body, "collections")
	if !res.Exists() {
		return []CollectionSummary{}, nil
	}
	var collections []CollectionSummary
	if err := json.Unmarshal([]byte(res.Raw), &collections); err != nil {
		return nil, fmt.Errorf("parsing collections: %w", err)
	}
	return collections, nil
}

// ExtractGlobals pulls the global variable list out of a workspace detail
// body. Both {"workspace":{"globals":[...]}} and a top-level "globals" are
// accepted, and a globals object is reduced to its "values" array.
func ExtractGlobals(body []byte) json.RawMessage {
	res := gjson.GetBytes(body, "workspace.globals")
	if !res.Exists() {
		res = gjson.GetBytes(body, "globals")
	}
	if res.IsObject() {
		res = res.Get("values")
	}
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(res.Raw)
}

func (s *Service) get(ctx context.Context, segments ...string) ([]byte, error) {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	endpoint := s.baseURL + "/" + strings.Join(escaped, "/")

	s.logger.Info("GET " + endpoint)
	resp, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func unwrap(body []byte, key string) json.RawMessage {
	if res := gjson.GetBytes(body, key); res.IsObject() {
		return json.RawMessage(res.Raw)
	}
	return json.RawMessage(body)
}
