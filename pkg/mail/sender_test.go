package mail

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResendSend(t *testing.T) {
	var got resendRequest
	var auth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := ioutil.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	s := NewResendSender("test-key", "noreply@stanza.app")
	s.apiURL = ts.URL

	err := s.Send(context.Background(), "elena@example.com", "Sign in to Stanza", "<p>hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if auth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if got.From != "noreply@stanza.app" || got.To != "elena@example.com" {
		t.Errorf("wrong envelope: %+v", got)
	}
}

func TestResendSendAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	s := NewResendSender("test-key", "noreply@stanza.app")
	s.apiURL = ts.URL

	if err := s.Send(context.Background(), "elena@example.com", "subj", "html"); err == nil {
		t.Fatal("expected error but was nil")
	}
}

func TestMagicLinkHTML(t *testing.T) {
	html, err := MagicLinkHTML("https://stanza.app", "tok-123", "elena@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !strings.Contains(html, "https://stanza.app?token=tok-123") {
		t.Error("link missing from email body")
	}
	if !strings.Contains(html, "elena@example.com") {
		t.Error("recipient missing from email body")
	}
	if !strings.Contains(html, "15 minutes") {
		t.Error("validity note missing from email body")
	}
}
