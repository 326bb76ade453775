package postman

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blackcoderx/brunomigrate/pkg/httpclient"
)

func newTestService(t *testing.T, routes map[string]string) (*Service, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer PMAK-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"name":"instanceNotFoundError"}}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(httpclient.WithBearerToken("PMAK-test"))
	return NewService(client, srv.URL+"/", nil), &seen
}

func TestService_ListWorkspaces(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/workspaces": `{"workspaces":[{"id":"w1","name":"Team A","type":"team"},{"id":"w2","name":"Personal","type":"personal"}]}`,
	})

	list, raw, err := svc.ListWorkspaces(context.Background())
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(list) != 2 || list[0].ID != "w1" || list[1].Name != "Personal" {
		t.Errorf("unexpected list: %+v", list)
	}
	if string(raw[:1]) != "[" {
		t.Errorf("raw should be the workspaces array, got %s", raw)
	}
}

func TestService_ListWorkspaces_MissingKey(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"/workspaces": `{}`})

	list, raw, err := svc.ListWorkspaces(context.Background())
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(list) != 0 || string(raw) != "[]" {
		t.Errorf("list=%v raw=%s", list, raw)
	}
}

func TestService_GetWorkspace(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/workspaces/w1": `{"workspace":{"id":"w1","name":"Team A","collections":[{"id":"c1","uid":"u-c1","name":"Smoke Tests"}],"environments":[{"id":"e1","name":"Dev"}]}}`,
	})

	ws, err := svc.GetWorkspace(context.Background(), "w1")
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	if ws.Name != "Team A" {
		t.Errorf("Name = %q", ws.Name)
	}
	if len(ws.Collections) != 1 || ws.Collections[0].Name != "Smoke Tests" || ws.Collections[0].UID != "u-c1" {
		t.Errorf("Collections = %+v", ws.Collections)
	}
	if len(ws.Environments) != 1 || ws.Environments[0].ID != "e1" {
		t.Errorf("Environments = %+v", ws.Environments)
	}
}

func TestService_GetWorkspace_UnexpectedBody(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"/workspaces/w1": `{"error":"nope"}`})

	_, err := svc.GetWorkspace(context.Background(), "w1")
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("error = %v, want ErrUnexpectedResponse", err)
	}
}

func TestService_GetCollectionUnwrapsEnvelope(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/collections/c1": `{"collection":{"info":{"name":"Smoke Tests"},"item":[]}}`,
	})

	raw, err := svc.GetCollection(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if string(raw) != `{"info":{"name":"Smoke Tests"},"item":[]}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestService_GetEnvironment(t *testing.T) {
	svc, seen := newTestService(t, map[string]string{
		"/environments/e1": `{"environment":{"name":"Dev","values":[{"key":"host","value":"localhost"}]}}`,
	})

	raw, err := svc.GetEnvironment(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetEnvironment: %v", err)
	}
	if string(raw) != `{"name":"Dev","values":[{"key":"host","value":"localhost"}]}` {
		t.Errorf("raw = %s", raw)
	}
	if len(*seen) != 1 || (*seen)[0] != "/environments/e1" {
		t.Errorf("requests = %v", *seen)
	}
}

func TestService_NotFoundIsTyped(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{})

	_, err := svc.GetCollection(context.Background(), "missing")
	if !errors.Is(err, httpclient.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestService_Unauthorized(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{})
	svc.client = httpclient.New(httpclient.WithBearerToken("wrong"))

	_, _, err := svc.ListWorkspaces(context.Background())
	if !errors.Is(err, httpclient.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestService_GetGlobalVariables(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/workspaces/w1": `{"workspace":{"id":"w1","name":"Team A","globals":[{"key":"token","value":"x"}]}}`,
		"/workspaces/w2": `{"workspace":{"id":"w2","name":"Empty"}}`,
	})

	raw, err := svc.GetGlobalVariables(context.Background(), "w1")
	if err != nil {
		t.Fatalf("GetGlobalVariables: %v", err)
	}
	if string(raw) != `[{"key":"token","value":"x"}]` {
		t.Errorf("raw = %s", raw)
	}

	raw, err = svc.GetGlobalVariables(context.Background(), "w2")
	if err != nil {
		t.Fatalf("GetGlobalVariables: %v", err)
	}
	if raw != nil {
		t.Errorf("expected nil globals, got %s", raw)
	}
}

func TestExtractGlobals(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested array", `{"workspace":{"globals":[{"key":"a"}]}}`, `[{"key":"a"}]`},
		{"top level", `{"globals":[]}`, `[]`},
		{"object with values", `{"workspace":{"globals":{"id":"g","values":[{"key":"b"}]}}}`, `[{"key":"b"}]`},
		{"missing", `{"workspace":{"id":"w1"}}`, ``},
		{"null", `{"workspace":{"globals":null}}`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(ExtractGlobals([]byte(tt.body))); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_ListCollections(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/collections": `{"collections":[{"id":"c1","uid":"1-c1","name":"Smoke Tests","owner":"1"}]}`,
	})

	cols, err := svc.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(cols) != 1 || cols[0].UID != "1-c1" {
		t.Errorf("collections = %+v", cols)
	}
}
