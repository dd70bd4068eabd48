package web

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewTemplates(t *testing.T) {
	templates, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}
	if templates == nil {
		t.Fatal("NewTemplates() returned nil")
	}
}

func TestTemplatesRender_Generated(t *testing.T) {
	templates, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}

	data := GeneratedPageData{
		Handle:  "alice.test",
		FeedURL: "https://feeds.example.com/feed?feed_id=1",
	}

	w := httptest.NewRecorder()
	if err := templates.Render(w, "generated.html", data); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := w.Body.String()
	if !strings.Contains(body, "alice.test") {
		t.Error("Rendered output does not contain handle")
	}
	if !strings.Contains(body, "https://feeds.example.com/feed?feed_id=1") {
		t.Error("Rendered output does not contain feed URL")
	}
}

func TestTemplatesRender_Error(t *testing.T) {
	templates, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}

	w := httptest.NewRecorder()
	if err := templates.Render(w, "error.html", ErrorPageData{Message: "upstream said no"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.Contains(w.Body.String(), "upstream said no") {
		t.Error("Rendered output does not contain error message")
	}
}

func TestTemplatesRender_UnknownTemplate(t *testing.T) {
	templates, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}

	w := httptest.NewRecorder()
	if err := templates.Render(w, "missing.html", nil); err == nil {
		t.Error("Render() expected error for unknown template")
	}
}

