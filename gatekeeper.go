package proposal

import (
	"net/url"
	"strings"
)

// Decision is the verdict for one outbound request made while rendering.
type Decision int

const (
	// Allow lets the request proceed.
	Allow Decision = iota
	// Abort fails the request as blocked by the client.
	Abort
)

func (d Decision) String() string {
	if d == Abort {
		return "abort"
	}
	return "allow"
}

// Rule is one entry of the interception policy.
type Rule struct {
	Name     string
	Match    func(rawURL string) bool
	Decision Decision
}

// Tracking and analytics hosts that never contribute to the printed page.
var blockedHosts = []string{
	"google-analytics",
	"googletagmanager",
	"segment.com",
	"mixpanel",
	"hotjar",
	"doubleclick",
	"facebook",
	"intercom",
}

// Large media that cannot appear in a PDF.
var blockedSuffixes = []string{".mp4", ".webm"}

// Gatekeeper decides which requests a page may make. Rules are evaluated in
// order and the first match wins; no match allows the request.
type Gatekeeper struct {
	rules []Rule
}

// NewGatekeeper creates a Gatekeeper from an explicit rule list.
func NewGatekeeper(rules ...Rule) *Gatekeeper {
	return &Gatekeeper{rules: append([]Rule(nil), rules...)}
}

// DefaultGatekeeper returns the standard policy. externalOrigin is the
// service's own public URL; empty disables that rule.
func DefaultGatekeeper(externalOrigin string) *Gatekeeper {
	return NewGatekeeper(DefaultRules(externalOrigin)...)
}

// DefaultRules returns the standard ordered policy.
func DefaultRules(externalOrigin string) []Rule {
	rules := []Rule{{
		Name:     "inline-data",
		Match:    func(u string) bool { return hasPrefixFold(u, "data:") },
		Decision: Allow,
	}}

	if origin := strings.TrimRight(strings.TrimSpace(externalOrigin), "/"); origin != "" {
		rules = append(rules, Rule{
			Name:     "own-origin",
			Match:    func(u string) bool { return strings.HasPrefix(u, origin) },
			Decision: Allow,
		})
	}

	return append(rules,
		Rule{
			Name: "tracking",
			Match: func(u string) bool {
				lower := strings.ToLower(u)
				for _, h := range blockedHosts {
					if strings.Contains(lower, h) {
						return true
					}
				}
				return false
			},
			Decision: Abort,
		},
		Rule{
			Name: "media",
			Match: func(u string) bool {
				p := strings.ToLower(urlPath(u))
				for _, s := range blockedSuffixes {
					if strings.HasSuffix(p, s) {
						return true
					}
				}
				return false
			},
			Decision: Abort,
		},
	)
}

// Decide returns the verdict for rawURL. A nil Gatekeeper allows everything.
func (g *Gatekeeper) Decide(rawURL string) Decision {
	d, _ := g.Explain(rawURL)
	return d
}

// Explain returns the verdict and the name of the rule that produced it,
// or "default" when no rule matched.
func (g *Gatekeeper) Explain(rawURL string) (Decision, string) {
	if g == nil {
		return Allow, "default"
	}
	for _, r := range g.rules {
		if r.Match != nil && r.Match(rawURL) {
			return r.Decision, r.Name
		}
	}
	return Allow, "default"
}

// urlPath strips query and fragment so suffix checks see the resource path.
func urlPath(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Opaque == "" {
		return u.Path
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
