package unknown

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestAppendWritesOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	now := time.Now().UTC()
	records := []Record{
		{UserID: 1, Timestamp: now, Input: "xyzabc123", IsFollowup: false},
		{UserID: 1, Timestamp: now, Input: "still lost", IsFollowup: true},
	}

	for _, rec := range records {
		if err := log.Append(rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := log.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	got := readRecords(t, path)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Input != "xyzabc123" || got[0].IsFollowup {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].Input != "still lost" || !got[1].IsFollowup {
		t.Errorf("unexpected second record: %+v", got[1])
	}
}

func TestAppendSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.jsonl")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Append(Record{UserID: 7, Input: "one"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	_ = first.Shutdown()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := second.Append(Record{UserID: 7, Input: "two"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	_ = second.Shutdown()

	if got := readRecords(t, path); len(got) != 2 {
		t.Fatalf("expected append across reopen, got %d records", len(got))
	}
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = log.Append(Record{UserID: id, Input: "concurrent"})
			}
		}(int64(w))
	}
	wg.Wait()
	_ = log.Shutdown()

	// Every line must parse: a torn write would break json decoding.
	got := readRecords(t, path)
	if len(got) != writers*perWriter {
		t.Fatalf("expected %d records, got %d", writers*perWriter, len(got))
	}
}

func readRecords(t *testing.T, path string) []Record {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("malformed record line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	return records
}
