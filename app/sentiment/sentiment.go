// Package sentiment is the local polarity heuristic used when the generative
// backend is unavailable. It is a pure function of the message and never
// performs I/O.
package sentiment

import (
	"fmt"
	"strings"
)

type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Per-word polarity weights. Small on purpose: the heuristic only has to
// produce a plausible degraded reply, not rival the backend.
var lexicon = map[string]float64{
	"happy":     0.8,
	"happiness": 0.8,
	"joy":       0.8,
	"glad":      0.6,
	"great":     0.8,
	"good":      0.7,
	"better":    0.5,
	"love":      0.6,
	"loved":     0.7,
	"calm":      0.4,
	"peaceful":  0.5,
	"hopeful":   0.6,
	"hope":      0.4,
	"grateful":  0.8,
	"excited":   0.6,
	"proud":     0.6,
	"relieved":  0.4,
	"fine":      0.2,
	"okay":      0.1,

	"sad":        -0.5,
	"sadness":    -0.5,
	"unhappy":    -0.6,
	"depressed":  -0.8,
	"angry":      -0.5,
	"anger":      -0.5,
	"mad":        -0.6,
	"furious":    -0.8,
	"anxious":    -0.6,
	"anxiety":    -0.6,
	"worried":    -0.5,
	"scared":     -0.6,
	"afraid":     -0.6,
	"lonely":     -0.6,
	"alone":      -0.3,
	"hurt":       -0.6,
	"pain":       -0.6,
	"tired":      -0.3,
	"exhausted":  -0.5,
	"hopeless":   -0.8,
	"lost":       -0.4,
	"bad":        -0.7,
	"worse":      -0.6,
	"terrible":   -0.9,
	"awful":      -0.8,
	"hate":       -0.8,
	"cry":        -0.5,
	"crying":     -0.6,
	"stressed":   -0.6,
	"overwhelmed": -0.6,
}

// Score sums the polarity weights of the words in text.
func Score(text string) float64 {
	var total float64

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		total += lexicon[word]
	}

	return total
}

// LabelForScore maps a polarity score to a label with the threshold at zero.
func LabelForScore(score float64) Label {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// Classify labels text by the sign of its polarity score.
func Classify(text string) Label {
	return LabelForScore(Score(text))
}

// FallbackReply is the degraded reply template referencing the detected
// sentiment and suggesting continued engagement.
func FallbackReply(text string) string {
	return fmt.Sprintf("I hear you. Your message feels %s. Want to explore this further? Try sharing more or use /chat for support.", Classify(text))
}
