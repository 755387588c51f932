package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pricing = Pricing{PageRate: 150, RushMultiplier: 1.25, Currency: "$"}

func TestCalculate_Brochure(t *testing.T) {
	est, err := Calculate(Request{
		SiteType: Brochure,
		Pages:    8,
		Features: []Feature{FeatureCMS, FeatureSEO},
	}, pricing)
	require.NoError(t, err)

	assert.Equal(t, []LineItem{
		{Label: "brochure package (5 pages included)", Amount: 3500},
		{Label: "3 additional pages", Amount: 450},
		{Label: "cms", Amount: 1200},
		{Label: "seo", Amount: 600},
	}, est.Items)
	assert.Equal(t, 5750.0, est.Total)
	assert.Equal(t, 4900.0, est.Low)
	assert.Equal(t, 6600.0, est.High)
	assert.Equal(t, 3, est.Weeks)
	assert.Equal(t, "$", est.Currency)
}

func TestCalculate_RushLanding(t *testing.T) {
	est, err := Calculate(Request{SiteType: Landing, Pages: 1, Rush: true}, pricing)
	require.NoError(t, err)

	require.Len(t, est.Items, 2)
	assert.Equal(t, LineItem{Label: "rush (x1.25)", Amount: 375}, est.Items[1])
	assert.Equal(t, 1875.0, est.Total)
	assert.Equal(t, 1600.0, est.Low)
	assert.Equal(t, 2150.0, est.High)
	assert.Equal(t, 1, est.Weeks)
}

func TestCalculate_RushShortensTimeline(t *testing.T) {
	est, err := Calculate(Request{
		SiteType: WebApp,
		Features: []Feature{FeaturePayments, FeatureIntegrations, FeatureMultilingual},
		Rush:     true,
	}, pricing)
	require.NoError(t, err)
	assert.Equal(t, 9, est.Weeks)
}

func TestCalculate_DuplicateFeaturesChargedOnce(t *testing.T) {
	est, err := Calculate(Request{SiteType: Landing, Features: []Feature{FeatureBlog, FeatureBlog}}, pricing)
	require.NoError(t, err)
	assert.Equal(t, 2300.0, est.Total)
}

func TestCalculate_NoRushMultiplier(t *testing.T) {
	est, err := Calculate(Request{SiteType: Landing, Rush: true}, Pricing{PageRate: 100})
	require.NoError(t, err)
	assert.Len(t, est.Items, 1)
	assert.Equal(t, 1500.0, est.Total)
}

func TestCalculate_Errors(t *testing.T) {
	_, err := Calculate(Request{SiteType: "portfolio"}, pricing)
	assert.Error(t, err)

	_, err = Calculate(Request{SiteType: Brochure, Features: []Feature{"chatbot"}}, pricing)
	assert.Error(t, err)

	_, err = Calculate(Request{SiteType: Brochure, Pages: -1}, pricing)
	assert.Error(t, err)
}

func TestParseSiteType(t *testing.T) {
	st, err := ParseSiteType(" ECommerce ")
	require.NoError(t, err)
	assert.Equal(t, Ecommerce, st)

	_, err = ParseSiteType("intranet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brochure, ecommerce, landing, webapp")
}

func TestParseFeatures(t *testing.T) {
	fs, err := ParseFeatures([]string{"CMS", "blog", "", "cms"})
	require.NoError(t, err)
	assert.Equal(t, []Feature{FeatureCMS, FeatureBlog}, fs)

	_, err = ParseFeatures([]string{"seo", "ar-vr"})
	assert.Error(t, err)
}
