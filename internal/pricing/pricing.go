package pricing

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-proposal/internal/dateutil"
	"github.com/alnah/go-proposal/internal/numfmt"
)

// Domain limits.
const (
	MaxMaps           = 25
	MaxAmount         = 999_999_999
	MaxConvosPerGuest = 100
	MaxCostPerConvo   = 100
	MinMarginRatio    = 0.01
	ValidityDays      = 30

	maxNameRunes  = 120
	maxDateRunes  = 30
	maxNotesRunes = 4000
)

// Defaults applied when a field is missing or not numeric.
const (
	DefaultAttendance          = 700_000
	DefaultInquiryRatio        = 0.30
	DefaultAvgConvosPerGuest   = 5
	DefaultCostPerConversation = 0.005
	DefaultMarginProfitRatio   = 0.50
	DefaultSetupFee            = 3_000
	DefaultClientName          = "Customer"
	DefaultVertical            = "waterpark"
	DefaultBundleChoice        = "ai_plus_maps"
)

// Product selectors.
const (
	ProductMaps = "maps"
	ProductAI   = "ai"
	ProductBoth = "both"
)

var verticalLabels = map[string]string{
	"zoo":       "Zoo",
	"farm":      "Farm",
	"waterpark": "Waterpark",
}

// Model is the fully priced proposal. All numbers are finite.
type Model struct {
	Vertical      string `json:"vertical"`
	VerticalLabel string `json:"verticalLabel"`
	ClientName    string `json:"clientName"`
	Product       string `json:"product"`
	BundleChoice  string `json:"bundleChoice"`

	MapPlan         string     `json:"mapPlan"`
	MapPlanName     string     `json:"mapPlanName"`
	MapPlanFeatures []string   `json:"mapPlanFeatures"`
	MapUnitPrice    float64    `json:"mapUnitPrice"`
	SetupFee        float64    `json:"setupFee"`
	Maps            []MapEntry `json:"maps"`
	MapsCount       int        `json:"mapsCount"`
	MapsSubtotal    float64    `json:"mapsSubtotal"`
	MapsOnlyTotal   float64    `json:"mapsOnlyTotal"`

	Attendance            float64 `json:"attendance"`
	InquiryRatio          float64 `json:"inquiryRatio"`
	AvgConvosPerGuest     float64 `json:"avgConvosPerGuest"`
	CostPerConversation   float64 `json:"costPerConversation"`
	MarginProfitRatio     float64 `json:"marginProfitRatio"`
	AIUsage               float64 `json:"aiUsage"`
	ExpectedConversations float64 `json:"expectedConversations"`
	ExpectedCost          float64 `json:"expectedCost"`
	GrossProfit           float64 `json:"grossProfit"`
	AIQuotedPrice         float64 `json:"aiQuotedPrice"`
	AIQuotedOverride      bool    `json:"aiQuotedOverride"`
	AIOnlyTotal           float64 `json:"aiOnlyTotal"`
	BundleTotal           float64 `json:"bundleTotal"`

	IncludeMaps      bool `json:"includeMaps"`
	IncludeAI        bool `json:"includeAI"`
	ShowMapsOnlyCard bool `json:"showMapsOnlyCard"`
	ShowAIOnlyCard   bool `json:"showAiOnlyCard"`
	ShowBundleCards  bool `json:"showBundleCards"`

	PreparedDate string `json:"preparedDate"`
	ValidityDays int    `json:"validityDays"`
	Notes        string `json:"notes"`

	Fmt Formatted `json:"fmt"`
}

// Formatted holds display strings for the template.
type Formatted struct {
	MapUnitPrice          string `json:"mapUnitPrice"`
	SetupFee              string `json:"setupFee"`
	MapsSubtotal          string `json:"mapsSubtotal"`
	MapsOnlyTotal         string `json:"mapsOnlyTotal"`
	Attendance            string `json:"attendance"`
	InquiryRatio          string `json:"inquiryRatio"`
	AvgConvosPerGuest     string `json:"avgConvosPerGuest"`
	CostPerConversation   string `json:"costPerConversation"`
	MarginProfitRatio     string `json:"marginProfitRatio"`
	AIUsage               string `json:"aiUsage"`
	ExpectedConversations string `json:"expectedConversations"`
	ExpectedCost          string `json:"expectedCost"`
	GrossProfit           string `json:"grossProfit"`
	AIQuotedPrice         string `json:"aiQuotedPrice"`
	AIOnlyTotal           string `json:"aiOnlyTotal"`
	BundleTotal           string `json:"bundleTotal"`
}

// Engine computes models. The zero value is ready to use.
type Engine struct {
	// Now supplies the prepared date when the caller leaves it blank.
	// Defaults to time.Now.
	Now func() time.Time
	// DateFormat is a dateutil preset or token layout. Defaults to "long".
	DateFormat string
}

// Compute prices raw with a zero Engine.
func Compute(raw RawInput) *Model {
	return Engine{}.Compute(raw)
}

// Compute prices raw. It never fails: out-of-domain values are clamped and
// missing ones take their defaults.
func (e Engine) Compute(raw RawInput) *Model {
	m := &Model{
		ValidityDays: ValidityDays,
	}

	m.Product = normalizeProduct(raw.Product)
	m.Vertical = lowerOr(raw.Vertical, DefaultVertical)
	m.VerticalLabel = verticalLabel(m.Vertical)
	m.BundleChoice = lowerOr(raw.BundleChoice, DefaultBundleChoice)
	m.ClientName = truncate(strings.TrimSpace(raw.ClientName), maxNameRunes)
	if m.ClientName == "" {
		m.ClientName = DefaultClientName
	}
	m.Notes = truncate(strings.TrimSpace(raw.Notes), maxNotesRunes)

	m.IncludeMaps = m.Product == ProductMaps || m.Product == ProductBoth
	m.IncludeAI = m.Product == ProductAI || m.Product == ProductBoth
	m.ShowMapsOnlyCard = m.IncludeMaps
	m.ShowAIOnlyCard = m.IncludeAI
	m.ShowBundleCards = m.Product == ProductBoth

	e.priceMaps(m, raw)
	e.priceAI(m, raw)

	m.MapsOnlyTotal = 0
	if m.IncludeMaps {
		m.MapsOnlyTotal = m.MapsSubtotal + m.SetupFee
	}
	m.AIOnlyTotal = m.AIQuotedPrice
	m.BundleTotal = m.MapsOnlyTotal + m.AIQuotedPrice

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	format := e.DateFormat
	if format == "" {
		format = dateutil.DefaultFormat
	}
	m.PreparedDate = truncate(dateutil.PreparedOn(raw.PreparedDate, now(), format), maxDateRunes)

	m.Fmt = formatModel(m)
	return m
}

func (e Engine) priceMaps(m *Model, raw RawInput) {
	plan := LookupPlan(raw.MapPlan)
	m.MapPlan = plan.Key
	m.MapPlanName = plan.Name
	m.MapPlanFeatures = plan.Features

	unit := raw.MapUnitPrice
	if _, ok := unit.get(); !ok {
		unit = raw.MapBasePrice
	}
	m.MapUnitPrice = bounded(unit, plan.Price, 0, MaxAmount)
	m.SetupFee = bounded(raw.SetupFee, DefaultSetupFee, 0, MaxAmount)

	m.Maps = normalizeMaps(raw.Maps)
	m.MapsCount = len(m.Maps)
	m.MapsSubtotal = float64(m.MapsCount) * m.MapUnitPrice
}

func (e Engine) priceAI(m *Model, raw RawInput) {
	m.Attendance = bounded(raw.Attendance, DefaultAttendance, 0, MaxAmount)
	m.InquiryRatio = bounded(raw.InquiryRatio, DefaultInquiryRatio, 0, 1)
	m.AvgConvosPerGuest = bounded(raw.AvgConvosPerGuest, DefaultAvgConvosPerGuest, 0, MaxConvosPerGuest)
	m.CostPerConversation = bounded(raw.CostPerConversation, DefaultCostPerConversation, 0, MaxCostPerConvo)
	m.MarginProfitRatio = bounded(raw.MarginProfitRatio, DefaultMarginProfitRatio, MinMarginRatio, 1)

	m.AIUsage = m.Attendance * m.InquiryRatio
	m.ExpectedConversations = m.AIUsage * m.AvgConvosPerGuest
	m.ExpectedCost = m.ExpectedConversations * m.CostPerConversation
	m.GrossProfit = m.ExpectedCost / m.MarginProfitRatio

	m.AIQuotedPrice = m.GrossProfit
	if v, ok := raw.AIQuotedPrice.get(); ok {
		m.AIQuotedPrice = v
		m.AIQuotedOverride = true
	}
}

// bounded resolves n to its default when missing, then clamps it.
func bounded(n Number, fallback, lo, hi float64) float64 {
	v, ok := n.get()
	if !ok {
		v = fallback
	}
	return numfmt.Clamp(v, lo, hi)
}

func normalizeMaps(in []MapEntry) []MapEntry {
	n := min(len(in), MaxMaps)
	out := make([]MapEntry, 0, n)
	for i := range n {
		name := truncate(strings.TrimSpace(in[i].Name), maxNameRunes)
		if name == "" {
			name = fmt.Sprintf("Map %d", i+1)
		}
		out = append(out, MapEntry{Name: name})
	}
	return out
}

func normalizeProduct(s string) string {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case ProductMaps, ProductAI, ProductBoth:
		return p
	default:
		return ProductBoth
	}
}

func verticalLabel(vertical string) string {
	if label, ok := verticalLabels[vertical]; ok {
		return label
	}
	return "Venue"
}

func lowerOr(s, fallback string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit]))
}

func formatModel(m *Model) Formatted {
	return Formatted{
		MapUnitPrice:          numfmt.Currency(m.MapUnitPrice, 0),
		SetupFee:              numfmt.Currency(m.SetupFee, 0),
		MapsSubtotal:          numfmt.Currency(m.MapsSubtotal, 0),
		MapsOnlyTotal:         numfmt.Currency(m.MapsOnlyTotal, 0),
		Attendance:            numfmt.Number(m.Attendance, 0),
		InquiryRatio:          numfmt.Percent(m.InquiryRatio, 0),
		AvgConvosPerGuest:     numfmt.Number(m.AvgConvosPerGuest, 0),
		CostPerConversation:   numfmt.Currency(m.CostPerConversation, 3),
		MarginProfitRatio:     numfmt.Percent(m.MarginProfitRatio, 0),
		AIUsage:               numfmt.Number(m.AIUsage, 0),
		ExpectedConversations: numfmt.Number(m.ExpectedConversations, 0),
		ExpectedCost:          numfmt.Currency(m.ExpectedCost, 0),
		GrossProfit:           numfmt.Currency(m.GrossProfit, 0),
		AIQuotedPrice:         numfmt.Currency(m.AIQuotedPrice, 0),
		AIOnlyTotal:           numfmt.Currency(m.AIOnlyTotal, 0),
		BundleTotal:           numfmt.Currency(m.BundleTotal, 0),
	}
}
