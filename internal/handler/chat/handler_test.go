package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/mustafizur/chat/backend/internal/model/contact"
	chatservice "github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/internal/service/store"
	"github.com/mustafizur/chat/backend/internal/storage/kv"
)

func setupRouter(limiter *rate.Limiter) (*chi.Mux, *chatservice.Service) {
	msgStore := store.New(kv.NewMemory(), "", nil)
	chatSvc := chatservice.NewService(contact.NewMemoryStore(contact.Seed()), msgStore, chatservice.Options{})
	handler := New(chatSvc, limiter)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func postMessage(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSendMessageAccepted(t *testing.T) {
	r, chatSvc := setupRouter(nil)

	resp := postMessage(r, `{"text":"hello"}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !body.Accepted || body.Message == nil || body.Message.Text != "hello" {
		t.Fatalf("unexpected response %+v", body)
	}
	if len(chatSvc.ActiveMessages()) != 1 {
		t.Fatalf("expected 1 active message, got %d", len(chatSvc.ActiveMessages()))
	}
}

func TestSendBlankMessageIsSilentNoop(t *testing.T) {
	r, chatSvc := setupRouter(nil)

	resp := postMessage(r, `{"text":"   "}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Accepted || body.Message != nil || len(body.Messages) != 0 {
		t.Fatalf("expected unchanged list, got %+v", body)
	}
	if len(chatSvc.ActiveMessages()) != 0 {
		t.Fatal("blank message must not be stored")
	}
}

func TestSendInvalidBody(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := postMessage(r, `{not json`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendRateLimited(t *testing.T) {
	r, chatSvc := setupRouter(rate.NewLimiter(rate.Limit(0.001), 1))

	if resp := postMessage(r, `{"text":"one"}`); resp.Code != http.StatusAccepted {
		t.Fatalf("expected first send accepted, got %d", resp.Code)
	}
	if resp := postMessage(r, `{"text":"two"}`); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if len(chatSvc.ActiveMessages()) != 1 {
		t.Fatal("rate-limited send must not be stored")
	}
}

func TestStateEndpoint(t *testing.T) {
	r, _ := setupRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var snap chatservice.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if snap.ActiveContactID != "mustafizur" || len(snap.Contacts) != 4 {
		t.Fatalf("unexpected state %+v", snap)
	}
	if snap.ActiveMessages == nil {
		t.Fatal("activeMessages must encode as an array")
	}
}
