package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alumnet/engagement/internal/config"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/pkg/logger"
)

func testClient(t *testing.T, url string, enabled bool) *Client {
	t.Helper()

	log := logger.New("error", "console", "stdout")
	return NewClient(&config.NotificationsConfig{
		WebhookURL: url,
		Channel:    "alumni-engagement",
		Enabled:    enabled,
	}, log)
}

func TestSendMessage(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(t, server.URL, true)

	err := client.SendMessage(&Message{Text: "hello"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if received.Text != "hello" {
		t.Errorf("Text = %q, want hello", received.Text)
	}
	if received.Channel != "alumni-engagement" {
		t.Errorf("Channel = %q, want default channel applied", received.Channel)
	}
}

func TestSendMessageDisabled(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := testClient(t, server.URL, false)

	if err := client.SendMessage(&Message{Text: "hello"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if called {
		t.Error("Disabled client should not post to the webhook")
	}
}

func TestSendMessageNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL, true)

	if err := client.SendMessage(&Message{Text: "hello"}); err == nil {
		t.Error("Expected error for non-OK webhook response")
	}
}

func TestSendBadgeAnnouncements(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(t, server.URL, true)

	awards := []models.UserBadge{
		{
			Badge:    models.Badge{Name: "Event Regular", Rarity: "common"},
			User:     models.User{Username: "alice"},
			EarnedAt: time.Now(),
		},
		{
			Badge:    models.Badge{Name: "Mentor", Rarity: "rare"},
			User:     models.User{Username: "bob"},
			EarnedAt: time.Now(),
		},
	}

	if err := client.SendBadgeAnnouncements(awards); err != nil {
		t.Fatalf("SendBadgeAnnouncements failed: %v", err)
	}

	if !strings.Contains(received.Text, "Event Regular") || !strings.Contains(received.Text, "@alice") {
		t.Errorf("Announcement text missing award details: %q", received.Text)
	}
	if !strings.Contains(received.Text, "**2** badge(s)") {
		t.Errorf("Announcement text missing award count: %q", received.Text)
	}
}

func TestSendBadgeAnnouncementsEmpty(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := testClient(t, server.URL, true)

	if err := client.SendBadgeAnnouncements(nil); err != nil {
		t.Fatalf("SendBadgeAnnouncements failed: %v", err)
	}
	if called {
		t.Error("No awards should mean no webhook post")
	}
}
