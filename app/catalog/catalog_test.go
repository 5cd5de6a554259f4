package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model_log.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}

	return path
}

func TestLoadNormalizesKeys(t *testing.T) {
	path := writeDataset(t, `[
		{"input": "  Happiness ", "output": "sunlight"},
		{"input": "SADNESS", "output": "breathing"}
	]`)

	c := Load(path)

	if c.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Size())
	}

	reply, ok := c.Lookup("happiness")
	if !ok || reply != "sunlight" {
		t.Errorf("expected catalog hit for normalized key, got %q (ok=%v)", reply, ok)
	}

	if _, ok := c.Lookup("  Happiness "); ok {
		t.Error("lookup must expect already-normalized input")
	}
}

func TestLoadDuplicateKeepsLast(t *testing.T) {
	path := writeDataset(t, `[
		{"input": "calm", "output": "first"},
		{"input": "Calm", "output": "second"}
	]`)

	c := Load(path)

	reply, _ := c.Lookup("calm")
	if reply != "second" {
		t.Errorf("expected last-loaded entry to win, got %q", reply)
	}
}

func TestLoadMissingFileYieldsEmptyCatalog(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "nope.json"))

	if c.Size() != 0 {
		t.Errorf("expected empty catalog, got %d entries", c.Size())
	}

	if _, ok := c.Lookup("anything"); ok {
		t.Error("empty catalog must miss every input")
	}
}

func TestLoadMalformedFileYieldsEmptyCatalog(t *testing.T) {
	path := writeDataset(t, `{"not": "an array"`)

	c := Load(path)
	if c.Size() != 0 {
		t.Errorf("expected empty catalog on malformed dataset, got %d entries", c.Size())
	}
}

func TestLookupEmptyInputMisses(t *testing.T) {
	path := writeDataset(t, `[{"input": "", "output": "never"}]`)

	c := Load(path)
	if _, ok := c.Lookup(Normalize("   ")); ok {
		t.Error("whitespace-only input must never be a catalog hit")
	}
}

func TestMoodReply(t *testing.T) {
	for _, mood := range []string{"happiness", "sadness", "anger", "anxiety"} {
		if MoodReply(mood) == "" {
			t.Errorf("expected template for mood %q", mood)
		}
	}

	if MoodReply("confusion") != "I'm here to listen. Try /chat to talk freely." {
		t.Error("unexpected default mood reply")
	}
}
