package recordstore

import (
	"net/http"
	"sync/atomic"
	"testing"
)

type testTransport struct{ called int32 }

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) { panic("not used") }
func (t *testTransport) CloseIdleConnections()                               { atomic.AddInt32(&t.called, 1) }

func TestClient_Close_IdempotentAndCallsTransport(t *testing.T) {
	tr := &testTransport{}
	client := &http.Client{Transport: tr}
	c, err := NewClient(Config{BaseURL: "http://localhost:8090/api/v1"}, client)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if atomic.LoadInt32(&tr.called) != 1 {
		t.Fatalf("expected CloseIdleConnections called once")
	}

	// second call should be a no-op
	if err := c.Close(); err != nil {
		t.Fatalf("Close second call error: %v", err)
	}
	if atomic.LoadInt32(&tr.called) != 1 {
		t.Fatalf("expected CloseIdleConnections not to be called again")
	}
}

func TestClient_EndpointKeepsBasePath(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://example.test/api/v1"}, &http.Client{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := c.endpoint(Users, "42").String(); got != "https://example.test/api/v1/users/42" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if got := c.endpoint(Jobs).String(); got != "https://example.test/api/v1/jobs" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(Config{BaseURL: "::not-a-url"}, nil); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}

func TestNewClient_DefaultsFromDefaultConfig(t *testing.T) {
	c, err := NewClient(Config{}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	def := DefaultConfig()
	if c.base.String() != def.BaseURL {
		t.Fatalf("expected default base url %q, got %q", def.BaseURL, c.base.String())
	}
	if c.cfg.UserAgent != def.UserAgent {
		t.Fatalf("expected default user agent %q, got %q", def.UserAgent, c.cfg.UserAgent)
	}
	if c.client.Timeout != 0 {
		t.Fatalf("expected no client timeout, got %v", c.client.Timeout)
	}
}
