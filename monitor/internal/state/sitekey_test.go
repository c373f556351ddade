package state

import "testing"

func TestSiteKey(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"https://www.urbs.curitiba.pr.gov.br/transporte/boletim-de-transportes", "urbs"},
		{"https://www.eueanatureza.com.br/ensaios_modelos", "eueanatureza"},
		{"https://example.com/", "example"},
		{"http://EXAMPLE.ORG", "example"},
		{"https://sub.domain.example.com/path?q=1", "sub"},
		{"https://localhost:8080/page", "localhost"},
	}
	for _, tc := range cases {
		if got := SiteKey(tc.input); got != tc.want {
			t.Errorf("SiteKey(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSiteKey_Unparseable(t *testing.T) {
	// WHAT: non-URL input still yields a usable filesystem-safe key.
	// WHY: record files must always have a stable name, even for bad config.
	if got := SiteKey("not a url at all!"); got != "not-a-url-at-all" {
		t.Errorf("got %q", got)
	}
	if got := SiteKey(""); got != "site" {
		t.Errorf("empty input: got %q, want fallback %q", got, "site")
	}
}

func TestSiteKey_Deterministic(t *testing.T) {
	u := "https://www.urbs.curitiba.pr.gov.br/x"
	if SiteKey(u) != SiteKey(u) {
		t.Fatal("SiteKey must be a pure mapping")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("https://www.urbs.curitiba.pr.gov.br/x"); got != "URBS" {
		t.Errorf("got %q, want URBS", got)
	}
}
