package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/models"
)

// Seed stall types and bundle names.
const (
	ChaatStallName   = "Chaat Stall"
	ChaatBundleName  = "Chaat Stall Monthly Bundle"
	chaatBundleTotal = "2450.00"
)

// Seed inserts the stall types and the recommended chaat bundle. It is a no-op
// when stall types already exist.
func Seed(ctx context.Context, s *Store) error {
	existing, err := s.StallTypes.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list stall types: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	stalls := []models.StallType{
		{
			Slug:             "chaat",
			Name:             ChaatStallName,
			NameHindi:        "चाट स्टॉल",
			Description:      "Golgappa, Chaat, Papdi",
			DescriptionHindi: "गोलगप्पे, चाट, पापड़ी",
			Icon:             "fas fa-cookie",
		},
		{
			Slug:             "juice",
			Name:             "Juice Stall",
			NameHindi:        "जूस स्टॉल",
			Description:      "Fresh fruit juices",
			DescriptionHindi: "ताज़े फलों का जूस",
			Icon:             "fas fa-glass-water",
		},
		{
			Slug:             "south_indian",
			Name:             "South Indian",
			NameHindi:        "साउथ इंडियन",
			Description:      "Dosa, Idli, Vada",
			DescriptionHindi: "डोसा, इडली, वड़ा",
			Icon:             "fas fa-pepper-hot",
		},
	}

	var chaatID string
	for i := range stalls {
		created, err := s.StallTypes.Create(ctx, &stalls[i])
		if err != nil {
			return fmt.Errorf("seed: stall type %s: %w", stalls[i].Name, err)
		}
		if created.Slug == "chaat" {
			chaatID = created.ID
		}
	}

	bundle := models.Bundle{
		StallTypeID: chaatID,
		Name:        ChaatBundleName,
		NameHindi:   "चाट स्टॉल मासिक बंडल",
		Items: []models.BundleItem{
			{ProductID: "potato-1", Quantity: decimal.NewFromInt(10), Unit: "kg"},
			{ProductID: "onion-1", Quantity: decimal.NewFromInt(5), Unit: "kg"},
			{ProductID: "green-chili-1", Quantity: decimal.NewFromInt(1), Unit: "kg"},
			{ProductID: "semolina-1", Quantity: decimal.NewFromInt(5), Unit: "kg"},
			{ProductID: "chaat-masala-1", Quantity: decimal.NewFromInt(500), Unit: "g"},
			{ProductID: "oil-1", Quantity: decimal.NewFromInt(2), Unit: "L"},
		},
		TotalCost:     models.MustMoney(chaatBundleTotal),
		IsRecommended: true,
	}
	if _, err := s.Bundles.Create(ctx, &bundle); err != nil {
		return fmt.Errorf("seed: bundle: %w", err)
	}
	return nil
}
