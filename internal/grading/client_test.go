package grading_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carddex/internal/grading"
)

func TestGradeParsesSubGrades(t *testing.T) {
	var gotAuth string
	var gotRequest map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost || r.URL.Path != "/grade" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"overall":8.5,"centering":9,"corners":8,"edges":8.5,"surface":8.5}`))
	}))
	defer server.Close()

	client, err := grading.New("key", server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("grading.New: %v", err)
	}

	result, err := client.Grade(context.Background(), "entry-9", "https://img/front.jpg", "https://img/back.jpg")
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if result.Overall != 8.5 || result.Centering != 9 || result.Corners != 8 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotRequest["subject_id"] != "entry-9" {
		t.Fatalf("unexpected request payload: %v", gotRequest)
	}
}

func TestGradeRequiresSubject(t *testing.T) {
	client, err := grading.New("key", "https://grading.test", time.Second)
	if err != nil {
		t.Fatalf("grading.New: %v", err)
	}
	if _, err := client.Grade(context.Background(), " ", "https://img/front.jpg", ""); err == nil {
		t.Fatal("expected error for empty subject id")
	}
}

func TestGradeSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	client, err := grading.New("key", server.URL, time.Second)
	if err != nil {
		t.Fatalf("grading.New: %v", err)
	}
	if _, err := client.Grade(context.Background(), "entry-9", "https://img/front.jpg", ""); err == nil {
		t.Fatal("expected error for 402 response")
	}
}
