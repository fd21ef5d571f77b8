package auction

// defaultIncrement is used when no increment rules are configured.
const defaultIncrement = 5

// NextIncrement returns the increment to add on top of the current amount.
// Rules are ordered by ascending threshold; the first rule whose threshold
// exceeds the amount wins, otherwise the last rule applies.
func NextIncrement(amount int, rules []IncrementRule) int {
	if len(rules) == 0 {
		return defaultIncrement
	}
	for _, r := range rules {
		if r.Threshold > amount {
			return r.Increment
		}
	}
	return rules[len(rules)-1].Increment
}
