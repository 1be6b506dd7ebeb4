package pricing

import "strings"

// Plan is a maps-product tier with its default per-map price.
type Plan struct {
	Key      string
	Name     string
	Price    float64
	Features []string
}

// DefaultPlanKey is used when the requested plan is unknown.
const DefaultPlanKey = "basic"

var plans = map[string]Plan{
	"basic": {
		Key:   "basic",
		Name:  "Basic",
		Price: 10000,
		Features: []string{
			"Interactive web map",
			"Wait time manager",
			"Location CMS",
		},
	},
	"standard": {
		Key:   "standard",
		Name:  "Standard",
		Price: 15000,
		Features: []string{
			"Interactive web map",
			"Wait time manager",
			"Location CMS",
			"Guest Dashboard",
			"Guest Journey",
			"Real time feedback",
		},
	},
	"premium": {
		Key:   "premium",
		Name:  "Premium",
		Price: 30000,
		Features: []string{
			"Interactive web map",
			"Wait time manager",
			"Location CMS",
			"Guest Dashboard",
			"Guest Journey",
			"Real time feedback",
			"Personalized offerings",
			"Automated marketing",
			"System integrations",
		},
	},
}

// LookupPlan returns the plan for key (case-insensitive), falling back to basic.
// The returned feature list is a copy.
func LookupPlan(key string) Plan {
	p, ok := plans[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		p = plans[DefaultPlanKey]
	}
	p.Features = append([]string(nil), p.Features...)
	return p
}

// PlanKeys lists the known plan keys from cheapest to most expensive.
func PlanKeys() []string {
	return []string{"basic", "standard", "premium"}
}
