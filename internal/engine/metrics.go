package engine

// Metrics computes WPM, CPM, and accuracy (percent, clamped to [0,100]).
// WPM and CPM are zero until some time has elapsed; accuracy is zero until a
// keystroke has been judged.
func Metrics(correct, errors int, elapsedMs int64) (wpm, cpm, accuracy float64) {
	den := float64(correct + errors)
	if den > 0 {
		accuracy = float64(correct) / den * 100
	}
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 100 {
		accuracy = 100
	}
	if elapsedMs <= 0 {
		return 0, 0, accuracy
	}
	minutes := float64(elapsedMs) / 60000.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	return wpm, cpm, accuracy
}

const (
	minAnticipation = 1.0
	maxAnticipation = 3.0
)

// anticipation averages the last few speed classes on a 1-3 scale.
type anticipation struct {
	buf  []float64
	next int
	n    int
}

func newAnticipation(size int) *anticipation {
	if size < 1 {
		size = 1
	}
	return &anticipation{buf: make([]float64, size)}
}

func (a *anticipation) push(speed SpeedClass) {
	a.buf[a.next] = speedWeight(speed)
	a.next = (a.next + 1) % len(a.buf)
	if a.n < len(a.buf) {
		a.n++
	}
}

func (a *anticipation) level() float64 {
	if a.n == 0 {
		return minAnticipation
	}
	var sum float64
	for i := 0; i < a.n; i++ {
		sum += a.buf[i]
	}
	lvl := sum / float64(a.n)
	if lvl < minAnticipation {
		return minAnticipation
	}
	if lvl > maxAnticipation {
		return maxAnticipation
	}
	return lvl
}

func speedWeight(speed SpeedClass) float64 {
	switch speed {
	case SpeedPerfect:
		return 3
	case SpeedBest:
		return 7.0 / 3.0
	case SpeedGood:
		return 5.0 / 3.0
	case SpeedSlow:
		return 1
	default:
		return 1
	}
}
