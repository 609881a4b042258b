package concept

// masteryTiers are checked from the highest threshold down; only the highest
// tier reached per type pays out.
var masteryTiers = []struct {
	count int
	bonus int
}{
	{count: 20, bonus: 200},
	{count: 10, bonus: 100},
	{count: 5, bonus: 50},
}

// MasteryBonus awards a per-type bonus for completed spans at 5/10/20 occurrences.
func MasteryBonus(completed []Span) int {
	total := 0
	for _, n := range CountByType(completed) {
		for _, tier := range masteryTiers {
			if n >= tier.count {
				total += tier.bonus
				break
			}
		}
	}
	return total
}
