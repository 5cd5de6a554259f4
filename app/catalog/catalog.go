package catalog

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
)

type entry struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Catalog is the immutable canned-response table, built once at startup.
type Catalog struct {
	replies map[string]string
}

// Normalize maps raw user input to a catalog key. Trimming and lower-casing
// are the only transformations applied.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Load reads the {input, output} dataset at path. A missing or malformed
// dataset degrades to an empty catalog instead of failing startup: every
// input then falls through to the generative path.
func Load(path string) *Catalog {
	c := &Catalog{replies: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read response dataset", "path", path, "error", err)
		return c
	}

	var entries []entry
	if err = json.Unmarshal(data, &entries); err != nil {
		slog.Error("Failed to parse response dataset", "path", path, "error", err)
		return c
	}

	// Duplicate keys keep the last-loaded entry.
	for _, e := range entries {
		c.replies[Normalize(e.Input)] = e.Output
	}

	slog.Info("Loaded response dataset", "path", path, "entries", len(c.replies))

	return c
}

// Lookup returns the canned reply for an already-normalized input.
func (c *Catalog) Lookup(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}

	reply, ok := c.replies[normalized]
	return reply, ok
}

func (c *Catalog) Size() int {
	return len(c.replies)
}

var moodReplies = map[string]string{
	"happiness": "I feel the warmth of your happiness, like sunlight breaking through clouds! You're stronger than any scars you carry. To keep this joy flowing, try journaling what sparked this feeling today. Want to share more? Use /chat to dive deeper!",
	"sadness":   "I hear the weight of your sadness, and it's okay to feel this way sometimes. You're not alone, and your heart is resilient. Try a deep breathing exercise: inhale for 4, hold for 4, exhale for 4. Want to talk more? Use /chat to explore what's on your mind.",
	"anger":     "Your anger is like a storm, powerful but temporary. You're stronger than this moment. Try writing down what's fueling it to let it go. Want to work through this together? Use /chat to share more and find calm.",
	"anxiety":   "Anxiety can feel like a tight knot, but you're stronger than the worries you carry. Try a quick grounding exercise: name 5 things you see around you. I'm here for you. Want to talk it out? Use /chat to share what's weighing on you.",
}

// MoodReply returns the fixed template for a mood button, with a generic
// listening line for unrecognized moods.
func MoodReply(mood string) string {
	if reply, ok := moodReplies[mood]; ok {
		return reply
	}

	return "I'm here to listen. Try /chat to talk freely."
}
