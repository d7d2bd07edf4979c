package domain

// Default point awards. Kept as a configuration surface rather than
// literals; the defaults preserve the original economy.
const (
	DefaultSharePoints         = 10 // awarded to the sharer per shared video
	DefaultVotePoints          = 2  // awarded to the voter per vote cast
	DefaultFiveStarBonusPoints = 5  // awarded to the sharer per 5-star vote received
)

// PointValues holds the award amounts applied by the vote processor.
type PointValues struct {
	Share         int
	Vote          int
	FiveStarBonus int
}

// DefaultPointValues returns the stock point economy.
func DefaultPointValues() PointValues {
	return PointValues{
		Share:         DefaultSharePoints,
		Vote:          DefaultVotePoints,
		FiveStarBonus: DefaultFiveStarBonusPoints,
	}
}
