package overpass

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const sampleReply = "@lat\t@lon\t@count\n33.5605235\t-112.0652852\t\n\t\t1\n"

func TestClientFetchGET(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		gotQuery = r.URL.Query().Get("data")
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, sampleReply)
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL, UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := "[out:csv(::lat,::lon,::count)];node['name'~'Ash & Co', i];out;"
	body, err := c.Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if body != sampleReply {
		t.Fatalf("body = %q, want %q", body, sampleReply)
	}
	if gotQuery != q {
		t.Fatalf("server saw data=%q, want %q", gotQuery, q)
	}
	if gotUA != "test-agent" {
		t.Fatalf("user agent = %q, want test-agent", gotUA)
	}
}

func TestClientFetchPOST(t *testing.T) {
	var gotQuery, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotQuery = r.PostForm.Get("data")
		io.WriteString(w, sampleReply)
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL, Method: "post"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Fetch(context.Background(), "way[highway]; out;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "way[highway]; out;" {
		t.Fatalf("server saw data=%q", gotQuery)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("content type = %q", gotType)
	}
}

func TestClientRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, sampleReply)
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL, Tries: 3, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Fetch(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestClientDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "parse error: line 1", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL, Tries: 3, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Fetch(context.Background(), "q")
	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want httpStatusError 400", err)
	}
	if !strings.Contains(he.Body, "parse error") {
		t.Fatalf("body = %q", he.Body)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestClientGivesUpAfterTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	c, err := NewClient(Options{URL: srv.URL, Tries: 2, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Fetch(context.Background(), "q"); err == nil {
		t.Fatalf("expected error")
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("calls = %d, want 2", n)
	}
}

func TestNewClientRejectsBadOptions(t *testing.T) {
	tests := []Options{
		{URL: "ftp://example.com/api"},
		{URL: "http://example.com/api", Method: "PUT"},
		{URL: "://bad"},
	}
	for _, o := range tests {
		if _, err := NewClient(o); err == nil {
			t.Errorf("NewClient(%+v): expected error", o)
		}
	}
}

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()

	if err := Probe(context.Background(), "http://"+addr+"/api/interpreter", time.Second); err != nil {
		t.Fatalf("probe open port: %v", err)
	}

	ln.Close()
	if err := Probe(context.Background(), "http://"+addr+"/api/interpreter", time.Second); err == nil {
		t.Fatalf("probe closed port: expected error")
	}
}
