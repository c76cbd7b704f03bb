package billing

import (
	"strings"

	"github.com/pathcraft-app/pathcraft/app/models"
)

// Tier families. A user may hold at most one non-terminal subscription per
// family; a higher-ranked tier in the same family counts as an upgrade and
// is allowed to coexist until the old one is superseded.
const (
	FamilyIndividual = "individual"
	FamilyTeam       = "team"
)

const (
	TierNavigator = "navigator"
	TierVoyager   = "voyager"
	TierCrew      = "crew"
	TierFleet     = "fleet"
)

// NormalizeTier maps a raw tier string onto the closed tier enumeration,
// returning "" for anything unrecognized.
func NormalizeTier(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierNavigator:
		return TierNavigator
	case TierVoyager:
		return TierVoyager
	case TierCrew:
		return TierCrew
	case TierFleet:
		return TierFleet
	default:
		return ""
	}
}

// TierFamily returns the family a tier belongs to, or "" for unknown tiers.
func TierFamily(tier string) string {
	switch NormalizeTier(tier) {
	case TierNavigator, TierVoyager:
		return FamilyIndividual
	case TierCrew, TierFleet:
		return FamilyTeam
	default:
		return ""
	}
}

// TierRank orders tiers within their family. Higher rank means a strict
// upgrade from a lower rank in the same family.
func TierRank(tier string) int {
	switch NormalizeTier(tier) {
	case TierVoyager, TierFleet:
		return 2
	case TierNavigator, TierCrew:
		return 1
	default:
		return 0
	}
}

// IsUpgrade reports whether requested is a strictly higher-ranked tier in the
// same family as current.
func IsUpgrade(current, requested string) bool {
	cf, rf := TierFamily(current), TierFamily(requested)
	if cf == "" || cf != rf {
		return false
	}
	return TierRank(requested) > TierRank(current)
}

// UpgradeOptions lists the tiers in the same family ranked strictly above the
// given tier, for the duplicate-subscription hint.
func UpgradeOptions(tier string) []string {
	family := TierFamily(tier)
	var out []string
	for _, candidate := range []string{TierNavigator, TierVoyager, TierCrew, TierFleet} {
		if TierFamily(candidate) == family && TierRank(candidate) > TierRank(tier) {
			out = append(out, candidate)
		}
	}
	return out
}

// NormalizeBillingCycle maps a raw cycle string onto monthly/yearly, returning
// "" for anything else.
func NormalizeBillingCycle(cycle string) string {
	switch strings.ToLower(strings.TrimSpace(cycle)) {
	case models.BillingCycleMonthly:
		return models.BillingCycleMonthly
	case models.BillingCycleYearly:
		return models.BillingCycleYearly
	default:
		return ""
	}
}

// ValidateSeats enforces the seat invariant: team tiers require seats > 0,
// individual tiers forbid seats.
func ValidateSeats(tier string, seats int) error {
	switch TierFamily(tier) {
	case FamilyTeam:
		if seats <= 0 {
			return newValidationError("team tier requires seats > 0")
		}
	case FamilyIndividual:
		if seats != 0 {
			return newValidationError("individual tier does not accept seats")
		}
	default:
		return newValidationError("unknown tier: " + tier)
	}
	return nil
}
