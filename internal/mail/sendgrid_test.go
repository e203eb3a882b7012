package mail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/mealplan/internal/core"
)

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   sendBody
}

type sendBody struct {
	From struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"from"`
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
	Attachments []struct {
		Content     string `json:"content"`
		Type        string `json:"type"`
		Filename    string `json:"filename"`
		Disposition string `json:"disposition"`
	} `json:"attachments"`
}

func newProvider(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Method = r.Method
		got.Path = r.URL.Path
		got.Auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got.Body); err != nil {
			t.Errorf("provider got invalid JSON: %v", err)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func testMessage() core.EmailMessage {
	return core.EmailMessage{
		To:      "user@example.com",
		From:    core.Address{Email: "noreply@example.com", Name: "Meal Management System"},
		Subject: "Your Meal Management Data Export - 3/5/2024",
		HTML:    "<p>hi</p>",
		Attachments: []core.Attachment{
			{Filename: "meal-plans.csv", Content: "SUQ=", Type: "text/csv", Disposition: "attachment"},
			{Filename: "ingredients.csv", Content: "SUQ=", Type: "text/csv", Disposition: "attachment"},
		},
	}
}

func TestSender_Send(t *testing.T) {
	srv, got := newProvider(t, http.StatusAccepted, "")
	s := NewSender("SG.test-key", srv.URL)

	if err := s.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.Method != http.MethodPost || got.Path != "/v3/mail/send" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
	if got.Auth != "Bearer SG.test-key" {
		t.Errorf("Authorization = %q", got.Auth)
	}

	b := got.Body
	if b.From.Email != "noreply@example.com" || b.From.Name != "Meal Management System" {
		t.Errorf("from = %+v", b.From)
	}
	if b.Subject != "Your Meal Management Data Export - 3/5/2024" {
		t.Errorf("subject = %q", b.Subject)
	}
	if len(b.Personalizations) != 1 || len(b.Personalizations[0].To) != 1 ||
		b.Personalizations[0].To[0].Email != "user@example.com" {
		t.Errorf("personalizations = %+v", b.Personalizations)
	}
	if len(b.Content) != 1 || b.Content[0].Type != "text/html" || b.Content[0].Value != "<p>hi</p>" {
		t.Errorf("content = %+v", b.Content)
	}

	var files []string
	for _, a := range b.Attachments {
		files = append(files, a.Filename)
		if a.Type != "text/csv" || a.Disposition != "attachment" || a.Content != "SUQ=" {
			t.Errorf("attachment = %+v", a)
		}
	}
	if diff := cmp.Diff([]string{"meal-plans.csv", "ingredients.csv"}, files); diff != "" {
		t.Errorf("attachments (-want +got):\n%s", diff)
	}
}

func TestSender_ProviderRejects(t *testing.T) {
	srv, _ := newProvider(t, http.StatusUnauthorized, `{"errors":[{"message":"bad key"}]}`)
	s := NewSender("bad", srv.URL)

	err := s.Send(context.Background(), testMessage())

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Send = %v, want *ProviderError", err)
	}
	if perr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", perr.StatusCode)
	}
}

func TestSender_NoRecipient(t *testing.T) {
	s := NewSender("k", "http://127.0.0.1:0")
	msg := testMessage()
	msg.To = ""
	if err := s.Send(context.Background(), msg); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("Send = %v, want ErrNoRecipient", err)
	}
}

func TestNewSender_DefaultBaseURL(t *testing.T) {
	if s := NewSender("k", ""); s.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", s.baseURL, DefaultBaseURL)
	}
}
