package entitlements

// Limits are the usage-limit defaults seeded into a user profile when a
// subscription is created for a tier.
type Limits struct {
	BlueprintsPerMonth    int
	RegenerationsPerMonth int
	TeamSeats             int
}

// DefaultsFor returns the usage limits for a tier. Team tiers scale the
// blueprint quota with the purchased seat count.
func DefaultsFor(tier string, seats int) Limits {
	switch tier {
	case "navigator":
		return Limits{BlueprintsPerMonth: 10, RegenerationsPerMonth: 20}
	case "voyager":
		return Limits{BlueprintsPerMonth: 40, RegenerationsPerMonth: 100}
	case "crew":
		return Limits{BlueprintsPerMonth: 25 * seats, RegenerationsPerMonth: 50 * seats, TeamSeats: seats}
	case "fleet":
		return Limits{BlueprintsPerMonth: 60 * seats, RegenerationsPerMonth: 150 * seats, TeamSeats: seats}
	default:
		return Limits{BlueprintsPerMonth: 2, RegenerationsPerMonth: 4}
	}
}
