package services

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/models"
)

// Seasons accepted by seasonal recommendations.
const (
	SeasonSummer  = "summer"
	SeasonWinter  = "winter"
	SeasonMonsoon = "monsoon"
)

// RecommendedProduct is one line of a recommended bundle.
type RecommendedProduct struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	NameHindi      string          `json:"name_hindi"`
	Category       string          `json:"category"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	EstimatedPrice models.Money    `json:"estimated_price"`
}

// BundleRecommendation is an advisory bundle for a stall type.
type BundleRecommendation struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	NameHindi         string               `json:"name_hindi"`
	Products          []RecommendedProduct `json:"products"`
	TotalPrice        models.Money         `json:"total_price"`
	DeliveryFrequency string               `json:"delivery_frequency"`
	Reasoning         string               `json:"reasoning"`
	ReasoningHindi    string               `json:"reasoning_hindi"`
}

// FreshnessResult classifies a product image.
type FreshnessResult struct {
	Status          string   `json:"status"`
	Confidence      float64  `json:"confidence"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// RecommendOptions tailor the reasoning text of recommendations.
type RecommendOptions struct {
	Season       string
	Personalized bool
}

// Advisor produces bundle suggestions and freshness classifications. The
// store and handlers depend only on this interface so that a model-backed
// service can replace the mock.
type Advisor interface {
	RecommendBundles(ctx context.Context, stallKey string, opts RecommendOptions) ([]BundleRecommendation, error)
	AnalyzeFreshness(ctx context.Context, imageRef string) (*FreshnessResult, error)
}

// MockAdvisor serves a fixed catalog and picks freshness results at random
// after a simulated delay.
type MockAdvisor struct {
	delay time.Duration
	pick  func(n int) int
}

// NewMockAdvisor creates a MockAdvisor whose freshness analysis takes delay.
func NewMockAdvisor(delay time.Duration) *MockAdvisor {
	return &MockAdvisor{delay: delay, pick: rand.IntN}
}

// RecommendBundles returns the catalog for stallKey; unknown keys get the chaat catalog.
func (a *MockAdvisor) RecommendBundles(_ context.Context, stallKey string, opts RecommendOptions) ([]BundleRecommendation, error) {
	base, ok := bundleCatalog[stallKey]
	if !ok {
		stallKey = "chaat"
		base = bundleCatalog[stallKey]
	}

	out := make([]BundleRecommendation, len(base))
	for i, b := range base {
		b.Products = append([]RecommendedProduct(nil), b.Products...)
		if opts.Season != "" {
			b.Reasoning += " (" + seasonalAdjustments[opts.Season][stallKey] + ")"
			b.ReasoningHindi += " (मौसमी सुझाव के साथ)"
		}
		if opts.Personalized {
			b.Reasoning += " (Personalized based on your order history)"
			b.ReasoningHindi += " (आपके ऑर्डर हिस्ट्री के आधार पर व्यक्तिगत)"
		}
		out[i] = b
	}
	return out, nil
}

// AnalyzeFreshness waits for the simulated delay, then returns one of three
// fixed results.
func (a *MockAdvisor) AnalyzeFreshness(ctx context.Context, _ string) (*FreshnessResult, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	result := freshnessResults[a.pick(len(freshnessResults))]
	result.Recommendations = append([]string(nil), result.Recommendations...)
	return &result, nil
}

var freshnessResults = []FreshnessResult{
	{
		Status:          models.FreshnessFresh,
		Confidence:      0.92,
		Description:     "Products appear fresh with good color and texture",
		Recommendations: []string{"Store in cool, dry place", "Use within 3-5 days"},
	},
	{
		Status:          models.FreshnessBlurred,
		Confidence:      0.78,
		Description:     "Image is not sharp enough to judge; products show some signs of aging",
		Recommendations: []string{"Retake the photo in good light", "Use soon", "Check for soft spots"},
	},
	{
		Status:          models.FreshnessLowQuality,
		Confidence:      0.85,
		Description:     "Products show significant deterioration",
		Recommendations: []string{"Do not sell", "Check storage conditions", "Improve supply chain timing"},
	},
}

var seasonalAdjustments = map[string]map[string]string{
	SeasonSummer: {
		"chaat":        "Add more cooling ingredients like yogurt, mint, and cucumber",
		"juice":        "Focus on citrus fruits and cooling drinks",
		"south_indian": "Increase coconut water and reduce heavy spices",
	},
	SeasonWinter: {
		"chaat":        "Add warming spices and hot chutneys",
		"juice":        "Include seasonal fruits like oranges and pomegranates",
		"south_indian": "Add more warming spices and ghee",
	},
	SeasonMonsoon: {
		"chaat":        "Focus on fried items and avoid leafy vegetables",
		"juice":        "Emphasize immunity-boosting ingredients",
		"south_indian": "Include anti-bacterial spices like turmeric and ginger",
	},
}

func product(id, name, hindi, category, qty, unit, price string) RecommendedProduct {
	return RecommendedProduct{
		ID:             id,
		Name:           name,
		NameHindi:      hindi,
		Category:       category,
		Quantity:       decimal.RequireFromString(qty),
		Unit:           unit,
		EstimatedPrice: models.MustMoney(price),
	}
}

const (
	perishable    = models.CategoryPerishable
	nonPerishable = models.CategoryNonPerishable
)

var bundleCatalog = map[string][]BundleRecommendation{
	"chaat": {
		{
			ID:        "chaat-basic",
			Name:      "Basic Chaat Bundle",
			NameHindi: "बेसिक चाट बंडल",
			Products: []RecommendedProduct{
				product("potato", "Potatoes", "आलू", perishable, "10", "kg", "200"),
				product("onion", "Onions", "प्याज", perishable, "5", "kg", "150"),
				product("chaat-masala", "Chaat Masala", "चाट मसाला", nonPerishable, "1", "kg", "300"),
				product("green-chutney", "Green Chutney Ingredients", "हरी चटनी सामग्री", perishable, "2", "kg", "100"),
				product("tamarind", "Tamarind Paste", "इमली का पेस्ट", nonPerishable, "0.5", "kg", "150"),
			},
			TotalPrice:        models.MustMoney("900"),
			DeliveryFrequency: "weekly",
			Reasoning:         "Perfect starter bundle for chaat stalls with essential ingredients for popular items like aloo chaat, papdi chaat",
			ReasoningHindi:    "चाट स्टॉल के लिए परफेक्ट स्टार्टर बंडल जिसमें आलू चाट, पापड़ी चाट जैसी लोकप्रिय चीजों के लिए जरूरी सामग्री है",
		},
		{
			ID:        "chaat-premium",
			Name:      "Premium Chaat Bundle",
			NameHindi: "प्रीमियम चाट बंडल",
			Products: []RecommendedProduct{
				product("potato", "Potatoes", "आलू", perishable, "15", "kg", "300"),
				product("chickpeas", "Boiled Chickpeas", "उबले चने", perishable, "5", "kg", "250"),
				product("papdi", "Papdi", "पापड़ी", nonPerishable, "2", "kg", "400"),
				product("sev", "Sev (Fine)", "सेव (बारीक)", nonPerishable, "1", "kg", "200"),
				product("yogurt", "Fresh Yogurt", "ताज़ा दही", perishable, "3", "kg", "180"),
			},
			TotalPrice:        models.MustMoney("1330"),
			DeliveryFrequency: "weekly",
			Reasoning:         "Complete bundle for advanced chaat varieties including bhel puri, dahi puri, and papdi chaat",
			ReasoningHindi:    "भेल पूरी, दही पूरी और पापड़ी चाट जैसी एडवांस चाट किस्मों के लिए कंप्लीट बंडल",
		},
	},
	"juice": {
		{
			ID:        "juice-seasonal",
			Name:      "Seasonal Fruit Bundle",
			NameHindi: "मौसमी फल बंडल",
			Products: []RecommendedProduct{
				product("oranges", "Fresh Oranges", "ताज़े संतरे", perishable, "20", "kg", "800"),
				product("sweet-lime", "Sweet Lime", "मौसमी", perishable, "15", "kg", "600"),
				product("sugar", "Sugar", "चीनी", nonPerishable, "5", "kg", "250"),
				product("salt", "Rock Salt", "काला नमक", nonPerishable, "1", "kg", "100"),
				product("ice", "Ice Cubes", "बर्फ के टुकड़े", perishable, "10", "kg", "200"),
			},
			TotalPrice:        models.MustMoney("1950"),
			DeliveryFrequency: "daily",
			Reasoning:         "Fresh fruits delivered daily for optimal juice quality and customer satisfaction",
			ReasoningHindi:    "बेहतरीन जूस क्वालिटी और ग्राहक संतुष्टि के लिए रोज ताज़े फल की डिलिवरी",
		},
	},
	"south_indian": {
		{
			ID:        "dosa-essentials",
			Name:      "Dosa Essentials Bundle",
			NameHindi: "डोसा एसेंशियल बंडल",
			Products: []RecommendedProduct{
				product("rice", "Rice (Parboiled)", "चावल (पैरबॉयल्ड)", nonPerishable, "10", "kg", "500"),
				product("urad-dal", "Urad Dal", "उड़द दाल", nonPerishable, "3", "kg", "450"),
				product("oil", "Cooking Oil", "खाना पकाने का तेल", nonPerishable, "5", "L", "600"),
				product("vegetables", "Mixed Vegetables", "मिक्स सब्जियां", perishable, "8", "kg", "400"),
				product("coconut", "Fresh Coconut", "ताज़ा नारियल", perishable, "5", "pieces", "250"),
			},
			TotalPrice:        models.MustMoney("2200"),
			DeliveryFrequency: "weekly",
			Reasoning:         "Complete ingredients for dosa, idli, and sambhar preparation with weekly delivery for staples",
			ReasoningHindi:    "डोसा, इडली और सांभर बनाने के लिए कंप्लीट सामग्री साप्ताहिक मुख्य सामान की डिलिवरी के साथ",
		},
	},
}
