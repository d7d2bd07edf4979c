// Package pricing maps community size to subscription tiers. Display
// only: the access gate never consults pricing.
package pricing

// Tier is one pricing band.
type Tier struct {
	Key          string
	Name         string
	MinMembers   int
	MaxMembers   int // 0 means unbounded
	MonthlyPrice float64
}

var tiers = []Tier{
	{Key: "small", Name: "Starter", MinMembers: 0, MaxMembers: 1000, MonthlyPrice: 7.99},
	{Key: "medium", Name: "Growth", MinMembers: 1001, MaxMembers: 10000, MonthlyPrice: 29.99},
	{Key: "large", Name: "Enterprise", MinMembers: 10001, MaxMembers: 0, MonthlyPrice: 59.99},
}

// TierFor returns the pricing tier for a community of the given size.
func TierFor(memberCount int) Tier {
	for _, t := range tiers {
		if t.MaxMembers == 0 || memberCount <= t.MaxMembers {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
