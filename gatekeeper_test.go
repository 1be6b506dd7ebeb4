package proposal

import "testing"

func TestDefaultGatekeeper_Decide(t *testing.T) {
	t.Parallel()

	gk := DefaultGatekeeper("https://quotes.example.com/")

	tests := []struct {
		name     string
		url      string
		want     Decision
		wantRule string
	}{
		{"inline data", "data:image/png;base64,iVBOR", Allow, "inline-data"},
		{"inline data upper case", "DATA:text/css,body{}", Allow, "inline-data"},
		{"own origin", "https://quotes.example.com/assets/logo.png", Allow, "own-origin"},
		{"own origin wins over media", "https://quotes.example.com/demo.mp4", Allow, "own-origin"},
		{"google analytics", "https://www.google-analytics.com/analytics.js", Abort, "tracking"},
		{"tag manager", "https://www.googletagmanager.com/gtag/js?id=G-1", Abort, "tracking"},
		{"segment", "https://cdn.segment.com/analytics.js", Abort, "tracking"},
		{"mixpanel", "https://cdn.mxpnl.com/libs/mixpanel-2.js", Abort, "tracking"},
		{"hotjar upper case", "https://static.HOTJAR.com/c/hotjar.js", Abort, "tracking"},
		{"doubleclick", "https://stats.g.doubleclick.net/r/collect", Abort, "tracking"},
		{"facebook pixel", "https://connect.facebook.net/en_US/fbevents.js", Abort, "tracking"},
		{"intercom", "https://widget.intercom.io/widget/abc", Abort, "tracking"},
		{"mp4", "https://cdn.example.com/intro.mp4", Abort, "media"},
		{"webm with query", "https://cdn.example.com/intro.WEBM?t=10", Abort, "media"},
		{"webm with fragment", "https://cdn.example.com/intro.webm#t=10", Abort, "media"},
		{"mp4 only in query", "https://cdn.example.com/player?src=a.mp4", Allow, "default"},
		{"web font", "https://fonts.gstatic.com/s/inter/v1/inter.woff2", Allow, "default"},
		{"stylesheet", "https://fonts.googleapis.com/css2?family=Inter", Allow, "default"},
		{"not a url", "::::", Allow, "default"},
		{"empty", "", Allow, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, rule := gk.Explain(tt.url)
			if got != tt.want || rule != tt.wantRule {
				t.Errorf("Explain(%q) = %v/%s, want %v/%s", tt.url, got, rule, tt.want, tt.wantRule)
			}
			if d := gk.Decide(tt.url); d != tt.want {
				t.Errorf("Decide(%q) = %v, want %v", tt.url, d, tt.want)
			}
		})
	}
}

func TestDefaultGatekeeper_NoOrigin(t *testing.T) {
	t.Parallel()

	gk := DefaultGatekeeper("")
	for _, r := range gk.rules {
		if r.Name == "own-origin" {
			t.Fatal("own-origin rule installed without an origin")
		}
	}
	if d := gk.Decide("https://quotes.example.com/demo.mp4"); d != Abort {
		t.Errorf("Decide() = %v, want abort", d)
	}
}

func TestGatekeeper_Nil(t *testing.T) {
	t.Parallel()

	var gk *Gatekeeper
	if d, rule := gk.Explain("https://www.google-analytics.com/a.js"); d != Allow || rule != "default" {
		t.Errorf("nil Explain() = %v/%s, want allow/default", d, rule)
	}
}

func TestNewGatekeeper_CustomRules(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		{Name: "no-match-func", Decision: Abort},
		{Name: "block-all", Match: func(string) bool { return true }, Decision: Abort},
	}
	gk := NewGatekeeper(rules...)

	// Mutating the caller's slice must not change the policy.
	rules[1].Decision = Allow

	if d, rule := gk.Explain("https://example.com"); d != Abort || rule != "block-all" {
		t.Errorf("Explain() = %v/%s, want abort/block-all", d, rule)
	}
}

func TestDecision_String(t *testing.T) {
	t.Parallel()

	if Allow.String() != "allow" || Abort.String() != "abort" {
		t.Errorf("got %q/%q", Allow, Abort)
	}
}
