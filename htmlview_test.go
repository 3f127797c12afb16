package chartifact

import (
	"context"
	"strings"
	"testing"
)

func TestHTMLViewRender(t *testing.T) {
	t.Parallel()

	v := NewHTMLView()
	doc := "# Sales Report\n\nSome *emphasis* here.\n"
	page, err := v.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<h1 id="sales-report">Sales Report</h1>`,
		"<em>emphasis</em>",
		"<style>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestHTMLViewRenderHighlightsFences(t *testing.T) {
	t.Parallel()

	v := NewHTMLView()
	doc := "```json vega-lite\n{\"mark\":{\"type\":\"bar\"}}\n```\n\n```csv chartData_c1\na,b\n1,2\n```\n"
	page, err := v.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Class-based highlighting produces chroma span classes backed by the
	// emitted stylesheet.
	if !strings.Contains(page, `class="chroma"`) {
		t.Errorf("fenced blocks not highlighted:\n%s", page)
	}
	if !strings.Contains(page, ".chroma") {
		t.Error("page missing chroma stylesheet rules")
	}
	if !strings.Contains(page, "chartData_c1") {
		t.Error("data block content lost")
	}
}

func TestHTMLViewRenderSanitizes(t *testing.T) {
	t.Parallel()

	v := NewHTMLView()

	tests := []struct {
		name    string
		doc     string
		missing string
	}{
		{name: "script tag", doc: "hello <script>alert(1)</script> world", missing: "<script>"},
		{name: "event handler", doc: `<img src="x" onerror="alert(1)">`, missing: "onerror"},
		{name: "raw iframe", doc: `<iframe src="https://evil.example"></iframe>`, missing: "<iframe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := v.Render(context.Background(), tt.doc)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if strings.Contains(page, tt.missing) {
				t.Errorf("sanitizer let %q through:\n%s", tt.missing, page)
			}
		})
	}
}

func TestHTMLViewRenderGFMTables(t *testing.T) {
	t.Parallel()

	v := NewHTMLView()
	doc := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	page, err := v.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(page, "<table>") {
		t.Errorf("GFM table not rendered:\n%s", page)
	}
}

func TestHTMLViewRenderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewHTMLView()
	if _, err := v.Render(ctx, "doc"); err == nil {
		t.Error("Render() with cancelled context returned nil error")
	}
}
