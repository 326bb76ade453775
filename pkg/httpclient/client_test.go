package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_GetSendsBearerAndContentType(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(WithBearerToken("PMAK-abc"))
	resp, err := c.Get(context.Background(), srv.URL+"/workspaces")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if gotAuth != "Bearer PMAK-abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}

	var body struct {
		OK bool `json:"ok"`
	}
	if err := resp.JSON(&body); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !body.OK {
		t.Error("expected ok=true")
	}
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, KindUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized, KindUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound, KindNotFound},
		{"server error", http.StatusInternalServerError, ErrHTTP, KindHTTP},
		{"rate limited", http.StatusTooManyRequests, ErrHTTP, KindHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"name":"boom"}}`))
			}))
			defer srv.Close()

			resp, err := New().Get(context.Background(), srv.URL)
			if resp != nil {
				t.Errorf("expected nil response, got %+v", resp)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if KindOf(err) != tt.kind {
				t.Errorf("KindOf = %q, want %q", KindOf(err), tt.kind)
			}
			if !strings.Contains(err.Error(), "boom") {
				t.Errorf("error should include the response body: %v", err)
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New().Get(context.Background(), url)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want transport failure", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("transport failure must not match ErrNotFound")
	}
}

func TestClient_BasicAuthOverridesBearer(t *testing.T) {
	var user, pass string
	var ok bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok = r.BasicAuth()
	}))
	defer srv.Close()

	c := New(WithBearerToken("token"))
	if _, err := c.Get(context.Background(), srv.URL, BasicAuth("admin", "secret")); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || user != "admin" || pass != "secret" {
		t.Errorf("basic auth = %q/%q (ok=%v)", user, pass, ok)
	}
}

func TestClient_PostAndPut(t *testing.T) {
	type seen struct {
		method string
		body   string
		header string
	}
	var got seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = seen{method: r.Method, body: string(b), header: r.Header.Get("X-Trace")}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(WithHeader("X-Trace", "default"))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*Response, error)
		want seen
	}{
		{
			name: "post json",
			call: func() (*Response, error) { return c.PostJSON(ctx, srv.URL, map[string]string{"a": "b"}) },
			want: seen{http.MethodPost, `{"a":"b"}`, "default"},
		},
		{
			name: "post string",
			call: func() (*Response, error) { return c.Post(ctx, srv.URL, "raw") },
			want: seen{http.MethodPost, "raw", "default"},
		},
		{
			name: "put json with header override",
			call: func() (*Response, error) {
				return c.PutJSON(ctx, srv.URL, []int{1, 2}, Header("X-Trace", "override"))
			},
			want: seen{http.MethodPut, `[1,2]`, "override"},
		},
		{
			name: "put string",
			call: func() (*Response, error) { return c.Put(ctx, srv.URL, "text") },
			want: seen{http.MethodPut, "text", "default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("status = %d", resp.StatusCode)
			}
			if got != tt.want {
				t.Errorf("server saw %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Get(ctx, srv.URL)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want transport failure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled: %v", err)
	}
}
