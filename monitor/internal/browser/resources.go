package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceNames maps CDP resource types to the names used in configuration.
// Types not listed here (scripts, documents, XHR) are never blocked by
// default: content on the monitored pages is script-rendered.
var resourceNames = map[proto.NetworkResourceType]string{
	proto.NetworkResourceTypeImage:      "images",
	proto.NetworkResourceTypeStylesheet: "stylesheets",
	proto.NetworkResourceTypeFont:       "fonts",
	proto.NetworkResourceTypeMedia:      "media",
}

// blockResources intercepts the page's requests and fails those whose
// resource type is in the configured block list. The returned stop function
// shuts the interception router down; callers tie it to the page's lifetime.
func blockResources(page *rod.Page, types []string) (stop func() error, err error) {
	blocked := make(map[string]bool, len(types))
	for _, t := range types {
		blocked[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	err = router.Add("*", "", func(h *rod.Hijack) {
		if blockDecision(blocked, h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}

	go router.Run()
	return router.Stop, nil
}

// blockDecision resolves a CDP resource type against the block list, first
// through the configured name, then by the raw type for anything unmapped.
func blockDecision(blocked map[string]bool, t proto.NetworkResourceType) bool {
	if name, ok := resourceNames[t]; ok {
		return blocked[name]
	}
	return blocked[strings.ToLower(string(t))]
}
