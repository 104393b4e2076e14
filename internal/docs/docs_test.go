package docs

import (
	"strings"
	"testing"
)

func TestTopicsAndGet(t *testing.T) {
	topics := Topics()
	if strings.Join(topics, ",") != "ai,reports,storage,tui" {
		t.Fatalf("unexpected topics %v", topics)
	}
	body, ok := Get(" Reports ")
	if !ok || !strings.HasPrefix(body, "# Reports") {
		t.Fatalf("expected reports topic, got %v %q", ok, body)
	}
	if _, ok := Get("../docs"); ok {
		t.Fatalf("expected path-like topic to be rejected")
	}
	if _, ok := Get("missing"); ok {
		t.Fatalf("expected unknown topic to be missing")
	}
}
