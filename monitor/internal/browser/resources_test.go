package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestBlockDecision(t *testing.T) {
	blocked := map[string]bool{
		"images":      true,
		"stylesheets": true,
		"fonts":       true,
		"media":       true,
	}

	cases := []struct {
		resType proto.NetworkResourceType
		want    bool
	}{
		{proto.NetworkResourceTypeImage, true},
		{proto.NetworkResourceTypeStylesheet, true},
		{proto.NetworkResourceTypeFont, true},
		{proto.NetworkResourceTypeMedia, true},
		{proto.NetworkResourceTypeScript, false},
		{proto.NetworkResourceTypeDocument, false},
		{proto.NetworkResourceTypeXHR, false},
	}
	for _, tc := range cases {
		if got := blockDecision(blocked, tc.resType); got != tc.want {
			t.Errorf("blockDecision(%s) = %v, want %v", tc.resType, got, tc.want)
		}
	}
}

func TestBlockDecision_ScriptsNeverBlockedByDefaultConfig(t *testing.T) {
	// WHY: the monitored pages render their content with scripts; blocking
	// them would turn every capture into an undersized document.
	blocked := map[string]bool{"images": true, "fonts": true, "media": true, "stylesheets": true}
	if blockDecision(blocked, proto.NetworkResourceTypeScript) {
		t.Fatal("script requests must pass with the default block list")
	}
}

func TestBlockDecision_UnmappedTypeFallsBackToRawName(t *testing.T) {
	blocked := map[string]bool{"websocket": true}
	if !blockDecision(blocked, proto.NetworkResourceTypeWebSocket) {
		t.Error("explicitly configured raw type should block")
	}
	if blockDecision(map[string]bool{}, proto.NetworkResourceTypeWebSocket) {
		t.Error("unconfigured type must pass")
	}
}
