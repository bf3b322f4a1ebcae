package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-key", WithBaseURL(server.URL), WithModel("test-model"))
	return server, client
}

func completionJSON(content string) string {
	return `{"choices":[{"message":{"content":` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

func TestCorrectReturnsProviderContent(t *testing.T) {
	var gotAuth, gotPath string
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Write([]byte(completionJSON("  corrected text \n")))
	})

	got, err := client.Correct(context.Background(), "orig text", nil, nil)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "corrected text" {
		t.Errorf("expected trimmed provider content, got %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestCorrectReturnsInputOnMalformedResponse(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	})

	got, err := client.Correct(context.Background(), "keep me", nil, nil)
	if err != nil {
		t.Fatalf("malformed response should not error: %v", err)
	}
	if got != "keep me" {
		t.Errorf("expected input returned unchanged, got %q", got)
	}
}

func TestCorrectReturnsInputOnEmptyChoices(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	got, err := client.Correct(context.Background(), "keep me", nil, nil)
	if err != nil {
		t.Fatalf("empty choices should not error: %v", err)
	}
	if got != "keep me" {
		t.Errorf("expected input returned unchanged, got %q", got)
	}
}

func TestCorrectReturnsInputOnBlankContent(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionJSON("   \n  ")))
	})

	got, err := client.Correct(context.Background(), "keep me", nil, nil)
	if err != nil {
		t.Fatalf("blank content should not error: %v", err)
	}
	if got != "keep me" {
		t.Errorf("expected input returned unchanged, got %q", got)
	}
}

func TestCorrectPropagatesHTTPErrors(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Correct(context.Background(), "text", nil, nil)
	if err == nil {
		t.Fatal("expected HTTP error to propagate")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestTranslateReturnsContent(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !strings.Contains(req.Messages[1].Content, "French") {
			t.Errorf("prompt should name the target language: %q", req.Messages[1].Content)
		}
		w.Write([]byte(completionJSON("bonjour\nle monde")))
	})

	got, err := client.Translate(context.Background(), "hello\nworld", "French", nil, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "bonjour\nle monde" {
		t.Errorf("unexpected translation %q", got)
	}
}

func TestTranslateErrorsOnMalformedResponse(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("nope"))
	})

	if _, err := client.Translate(context.Background(), "hello", "French", nil, nil); err == nil {
		t.Fatal("translate should propagate malformed responses")
	}
}

func TestTranslateRequiresTargetLanguage(t *testing.T) {
	client := NewClient("key")
	if _, err := client.Translate(context.Background(), "hello", "  ", nil, nil); err == nil {
		t.Fatal("expected error for blank target language")
	}
}

func TestChatSurfacesAPIError(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})

	_, err := client.Translate(context.Background(), "hello", "French", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestChatRequiresAPIKey(t *testing.T) {
	client := NewClient("")
	if _, err := client.Translate(context.Background(), "hello", "French", nil, nil); err == nil {
		t.Fatal("expected error when api key missing")
	}
}
