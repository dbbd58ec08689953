package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

// hostPort splits an httptest server URL into client options.
func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return u.Hostname(), port
}

func TestConfigURLs(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.BaseURL(); got != "http://127.0.0.1:8001" {
		t.Errorf("BaseURL = %q, want http://127.0.0.1:8001", got)
	}
	if got := cfg.WSURL(); got != "ws://127.0.0.1:8001/ws" {
		t.Errorf("WSURL = %q, want ws://127.0.0.1:8001/ws", got)
	}

	cfg.Apply(WithSSL(true), WithHost("robot.local"), WithPort(9001))
	if got := cfg.BaseURL(); got != "https://robot.local:9001" {
		t.Errorf("BaseURL = %q, want https://robot.local:9001", got)
	}
	if got := cfg.WSURL(); got != "wss://robot.local:9001/ws" {
		t.Errorf("WSURL = %q, want wss://robot.local:9001/ws", got)
	}
}

func TestDefaultTimings(t *testing.T) {
	// These values come from the robot firmware contract; changing them
	// changes observable client behavior.
	if DefaultCallTimeout != 5*time.Second {
		t.Errorf("DefaultCallTimeout = %v, want 5s", DefaultCallTimeout)
	}
	if DefaultRetryDelay != time.Second {
		t.Errorf("DefaultRetryDelay = %v, want 1s", DefaultRetryDelay)
	}
	if DefaultMaxRetries != 5 {
		t.Errorf("DefaultMaxRetries = %d, want 5", DefaultMaxRetries)
	}
}

func TestCallSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robot/start" {
			t.Errorf("path = %q, want /robot/start", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("method = %q, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"msg":  "ok",
			"data": map[string]string{"state": "started"},
		})
	}))
	defer server.Close()

	host, port := hostPort(t, server.URL)
	c := NewClient(WithHost(host), WithPort(port))
	defer c.Close()

	resp, err := c.Call(context.Background(), CallSpec{Method: "POST", Path: "/robot/start"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !resp.OK() {
		t.Errorf("code = %d, want 0", resp.Code)
	}

	var data struct {
		State string `json:"state"`
	}
	if err := resp.ParseData(&data); err != nil {
		t.Fatalf("ParseData failed: %v", err)
	}
	if data.State != "started" {
		t.Errorf("state = %q, want started", data.State)
	}
}

func TestCallQueryAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("no"); got != "1" {
			t.Errorf("query no = %q, want 1", got)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["mode"] != "walk" {
			t.Errorf("body mode = %q, want walk", body["mode"])
		}
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "ok"})
	}))
	defer server.Close()

	host, port := hostPort(t, server.URL)
	c := NewClient(WithHost(host), WithPort(port))
	defer c.Close()

	q := url.Values{}
	q.Set("no", "1")
	_, err := c.Call(context.Background(), CallSpec{
		Method: "POST",
		Path:   "/robot/mode",
		Query:  q,
		Body:   map[string]string{"mode": "walk"},
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
}

func TestCallStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "motor controller offline", http.StatusInternalServerError)
	}))
	defer server.Close()

	host, port := hostPort(t, server.URL)
	c := NewClient(WithHost(host), WithPort(port))
	defer c.Close()

	_, err := c.Call(context.Background(), CallSpec{Method: "GET", Path: "/robot/motor/pvc"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error type = %T, want *CallError", err)
	}
	if !callErr.IsServerError() {
		t.Errorf("IsServerError = false for status %d", callErr.StatusCode)
	}
}

func TestCallAPICodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":7,"msg":"motor fault","data":null}`)
	}))
	defer server.Close()

	host, port := hostPort(t, server.URL)
	c := NewClient(WithHost(host), WithPort(port))
	defer c.Close()

	resp, err := c.Call(context.Background(), CallSpec{Method: "POST", Path: "/robot/stand"})
	if err == nil {
		t.Fatal("expected error for non-zero response code")
	}
	if resp != nil {
		t.Errorf("response = %+v, want nil on failure", resp)
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error type = %T, want *CallError", err)
	}
	if callErr.Code != 7 {
		t.Errorf("Code = %d, want 7", callErr.Code)
	}
	if callErr.Message != "motor fault" {
		t.Errorf("Message = %q, want %q", callErr.Message, "motor fault")
	}
	if !callErr.IsRobotError() {
		t.Error("IsRobotError = false for non-zero code")
	}
}

func TestCallTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block // never answer within the test timeout
	}))
	defer server.Close()
	defer close(block) // unblock the handler before Close waits on it

	host, port := hostPort(t, server.URL)
	c := NewClient(WithHost(host), WithPort(port), WithCallTimeout(50*time.Millisecond))
	defer c.Close()

	start := time.Now()
	_, err := c.Call(context.Background(), CallSpec{Method: "GET", Path: "/robot/motor/limit/list"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout = false for %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %v, should fail at the configured timeout", elapsed)
	}
}

func TestCallConnectionRefused(t *testing.T) {
	// Port 1 is essentially never listening.
	c := NewClient(WithHost("127.0.0.1"), WithPort(1), WithCallTimeout(time.Second))
	defer c.Close()

	_, err := c.Call(context.Background(), CallSpec{Method: "GET", Path: "/robot/start"})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
