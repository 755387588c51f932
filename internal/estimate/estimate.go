// Package estimate prices requests from the website estimate wizard.
package estimate

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SiteType is the kind of site a client is asking for.
type SiteType string

const (
	Landing   SiteType = "landing"
	Brochure  SiteType = "brochure"
	Ecommerce SiteType = "ecommerce"
	WebApp    SiteType = "webapp"
)

// Feature is an optional add-on priced on top of the base package.
type Feature string

const (
	FeatureCMS          Feature = "cms"
	FeatureBlog         Feature = "blog"
	FeatureBooking      Feature = "booking"
	FeaturePayments     Feature = "payments"
	FeatureSEO          Feature = "seo"
	FeatureMultilingual Feature = "multilingual"
	FeatureIntegrations Feature = "integrations"
)

// Package is the base price of a site type.
type Package struct {
	Base          float64
	IncludedPages int
	Weeks         int
}

// Packages maps each site type to its base package.
var Packages = map[SiteType]Package{
	Landing:   {Base: 1500, IncludedPages: 1, Weeks: 1},
	Brochure:  {Base: 3500, IncludedPages: 5, Weeks: 3},
	Ecommerce: {Base: 8000, IncludedPages: 10, Weeks: 6},
	WebApp:    {Base: 15000, IncludedPages: 5, Weeks: 10},
}

// Features maps each add-on to its flat price.
var Features = map[Feature]float64{
	FeatureCMS:          1200,
	FeatureBlog:         800,
	FeatureBooking:      1500,
	FeaturePayments:     2000,
	FeatureSEO:          600,
	FeatureMultilingual: 1800,
	FeatureIntegrations: 1500,
}

// rangeSpread is the +/- band quoted around the point estimate.
const rangeSpread = 0.15

// Pricing holds the studio's adjustable rates.
type Pricing struct {
	PageRate       float64
	RushMultiplier float64
	Currency       string
}

// Request is what the client filled in on the wizard.
type Request struct {
	SiteType SiteType  `json:"site_type"`
	Pages    int       `json:"pages"`
	Features []Feature `json:"features,omitempty"`
	Rush     bool      `json:"rush"`
}

// LineItem is one priced component of an estimate.
type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Estimate is a priced request.
type Estimate struct {
	Request  Request    `json:"request"`
	Items    []LineItem `json:"items"`
	Total    float64    `json:"total"`
	Low      float64    `json:"low"`
	High     float64    `json:"high"`
	Weeks    int        `json:"weeks"`
	Currency string     `json:"currency"`
}

// ParseSiteType converts a case-insensitive name to a SiteType.
func ParseSiteType(s string) (SiteType, error) {
	t := SiteType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Packages[t]; !ok {
		return "", fmt.Errorf("unknown site type %q (want one of %s)", s, strings.Join(SiteTypeNames(), ", "))
	}
	return t, nil
}

// ParseFeatures converts a list of case-insensitive names to features.
// Duplicates are dropped; the first unknown name is an error.
func ParseFeatures(names []string) ([]Feature, error) {
	seen := make(map[Feature]bool)
	var out []Feature
	for _, n := range names {
		f := Feature(strings.ToLower(strings.TrimSpace(n)))
		if f == "" {
			continue
		}
		if _, ok := Features[f]; !ok {
			return nil, fmt.Errorf("unknown feature %q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// SiteTypeNames returns the known site types, sorted.
func SiteTypeNames() []string {
	names := make([]string, 0, len(Packages))
	for t := range Packages {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// Calculate prices req. Pages beyond the package's included pages are
// charged at the page rate; a rush job multiplies the subtotal and cuts the
// timeline by a quarter. The quoted range is the total +/-15%, rounded to
// the nearest 50.
func Calculate(req Request, p Pricing) (*Estimate, error) {
	pkg, ok := Packages[req.SiteType]
	if !ok {
		return nil, fmt.Errorf("unknown site type %q", req.SiteType)
	}
	if req.Pages < 0 {
		return nil, fmt.Errorf("page count must not be negative, got %d", req.Pages)
	}
	if p.RushMultiplier < 1 {
		p.RushMultiplier = 1
	}

	est := &Estimate{Request: req, Currency: p.Currency}
	est.Items = append(est.Items, LineItem{
		Label:  fmt.Sprintf("%s package (%d pages included)", req.SiteType, pkg.IncludedPages),
		Amount: pkg.Base,
	})
	if extra := req.Pages - pkg.IncludedPages; extra > 0 {
		est.Items = append(est.Items, LineItem{
			Label:  fmt.Sprintf("%d additional pages", extra),
			Amount: float64(extra) * p.PageRate,
		})
	}

	seen := make(map[Feature]bool)
	for _, f := range req.Features {
		price, ok := Features[f]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		est.Items = append(est.Items, LineItem{Label: string(f), Amount: price})
	}

	var subtotal float64
	for _, it := range est.Items {
		subtotal += it.Amount
	}

	weeks := pkg.Weeks + len(seen)/3
	if req.Rush && p.RushMultiplier > 1 {
		surcharge := subtotal * (p.RushMultiplier - 1)
		est.Items = append(est.Items, LineItem{
			Label:  fmt.Sprintf("rush (x%s)", formatMultiplier(p.RushMultiplier)),
			Amount: surcharge,
		})
		subtotal += surcharge
		weeks = int(math.Ceil(float64(weeks) * 0.75))
	}

	est.Total = subtotal
	est.Low = roundTo(subtotal*(1-rangeSpread), 50)
	est.High = roundTo(subtotal*(1+rangeSpread), 50)
	est.Weeks = weeks
	return est, nil
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

func formatMultiplier(m float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", m), "0"), ".")
}
