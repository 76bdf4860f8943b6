package vtest

import (
	"strings"
	"testing"
)

// HTMLer is anything that serializes to markup.
type HTMLer interface {
	OuterHTML() string
}

// ExpectContains asserts that rendered output contains expected substring.
func ExpectContains(t *testing.T, node HTMLer, expected string) {
	t.Helper()
	html := node.OuterHTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t *testing.T, node HTMLer, unexpected string) {
	t.Helper()
	html := node.OuterHTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t *testing.T, node HTMLer, tag string) {
	t.Helper()
	html := node.OuterHTML()
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t *testing.T, node HTMLer, attr, value string) {
	t.Helper()
	html := node.OuterHTML()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectHTML asserts that two render targets serialize identically.
func ExpectHTML(t *testing.T, got, want HTMLer) {
	t.Helper()
	g, w := got.OuterHTML(), want.OuterHTML()
	if g != w {
		t.Errorf("rendered output differs\n got: %s\nwant: %s", truncate(g, 500), truncate(w, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
