// Package profile distributes buyer profiles and logos across the
// variants of a batch.
package profile

import "github.com/garyjia/invoice-variants/internal/models"

// Assignment is the branding picked for one variant. Either field may be
// unset when its pool is empty.
type Assignment struct {
	BuyerProfile *models.BuyerProfile
	LogoPath     string
}

// Assign maps a variant index onto the supplied pools round-robin.
// Pure function of (index, pools): no randomness, no shared state, so the
// distribution is reproducible and safe under concurrent generation.
func Assign(variantIndex int, buyers []models.BuyerProfile, logos []string) Assignment {
	var a Assignment
	if len(buyers) > 0 {
		buyer := buyers[variantIndex%len(buyers)]
		a.BuyerProfile = &buyer
	}
	if len(logos) > 0 {
		a.LogoPath = logos[variantIndex%len(logos)]
	}
	return a
}
