package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNextLogPath(t *testing.T) {
	dir := t.TempDir()

	first := nextLogPath(dir, "2016_08_01", "Demultiplexing_Summary", "csv")
	if want := filepath.Join(dir, "2016_08_01_Demultiplexing_Summary.csv"); first != want {
		t.Fatalf("first path = %q, want %q", first, want)
	}
	if err := os.WriteFile(first, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	second := nextLogPath(dir, "2016_08_01", "Demultiplexing_Summary", "csv")
	if want := filepath.Join(dir, "2016_08_01_Demultiplexing_Summary_2.csv"); second != want {
		t.Fatalf("second path = %q, want %q", second, want)
	}
	if err := os.WriteFile(second, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	third := nextLogPath(dir, "2016_08_01", "Demultiplexing_Summary", "csv")
	if want := filepath.Join(dir, "2016_08_01_Demultiplexing_Summary_3.csv"); third != want {
		t.Fatalf("third path = %q, want %q", third, want)
	}
}

func TestWriteSummary(t *testing.T) {
	chdirTemp(t)

	cfg := Config{
		Read1: "r1.fq", Read2: "r2.fq", Index1: "i1.fq",
		Threshold: 2, Extension: "fq", CompressLevel: 4,
	}
	table := tableOf(t, map[string]string{"alpha": "ATCACGCGTGAT"})
	acc := NewAccumulator()
	acc.Total = 10
	acc.Demultiplexed = 8
	acc.Fuzzy = 2
	acc.PerDest["alpha"] = 8
	acc.PerDest[undetermined] = 2

	if err := writeSummary(&cfg, table, acc, 3*time.Second); err != nil {
		t.Fatal(err)
	}

	matches, err := filepath.Glob(filepath.Join(logDir, "*_Demultiplexing_Summary.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("summary files = %v, err = %v", matches, err)
	}
	fh, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]string{}
	for _, row := range rows {
		if len(row) == 2 {
			got[row[0]] = row[1]
		}
	}
	for key, want := range map[string]string{
		"NumberReadsInput":         "10",
		"NumberReadsDemultiplexed": "8",
		"NumberFuzzyDemultiplexed": "2",
		"NumberIndexClash":         "0",
		"alpha":                    "8", // last section: reads per output
		"Threshold":                "2",
	} {
		if got[key] != want {
			t.Errorf("summary row %q = %q, want %q", key, got[key], want)
		}
	}
}

func TestWriteFuzzyList(t *testing.T) {
	chdirTemp(t)

	acc := NewAccumulator()
	acc.FuzzyIDs = []string{"read-7", "read-40"}
	if err := writeFuzzyList(acc); err != nil {
		t.Fatal(err)
	}

	matches, err := filepath.Glob(filepath.Join(logDir, "*_FuzzyMatchedIDs.txt"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("fuzzy list files = %v, err = %v", matches, err)
	}
	got, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if want := "read-7\nread-40\n"; string(got) != want {
		t.Errorf("fuzzy list = %q, want %q", got, want)
	}
}
