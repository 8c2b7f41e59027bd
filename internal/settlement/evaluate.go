package settlement

// DefaultPointThreshold is the weekly point total a member must reach to
// avoid a penalty, unless overridden in Config.
const DefaultPointThreshold = 20

// Evaluate reports whether a weekly point total meets the threshold.
// Landing exactly on the threshold is enough; anything below it, including
// negative totals, earns a penalty.
func Evaluate(totalPoints, threshold int) bool {
	return totalPoints >= threshold
}
