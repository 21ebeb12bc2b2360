package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const logDir = "Logs"

// nextLogPath returns dir/<date>_<base>.<ext>, adding an incremental _2,
// _3, ... suffix when earlier runs from the same day already wrote one.
func nextLogPath(dir, date, base, ext string) string {
	name := filepath.Join(dir, date+"_"+base+"."+ext)
	if _, err := os.Stat(name); os.IsNotExist(err) {
		return name
	}
	for i := 2; i < 10000; i++ {
		name = filepath.Join(dir, date+"_"+base+"_"+strconv.Itoa(i)+"."+ext)
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return name
		}
	}
	return name
}

// writeSummary writes the date-stamped run summary CSV under Logs/,
// consuming the accumulator read-only.
func writeSummary(cfg *Config, table *Table, acc *Accumulator, took time.Duration) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	now := time.Now()
	path := nextLogPath(logDir, now.Format("2006_01_02"), "Demultiplexing_Summary", "csv")
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	wd, _ := os.Getwd()
	w := csv.NewWriter(fh)
	rows := [][]string{
		{"Property", "Value"},
		{"Directory", wd},
		{"DateFinished", now.Format("2006_01_02")},
		{"TimeFinished", now.Format("15:04:05")},
		{"TimeTaken(Seconds)", fmt.Sprintf("%.2f", took.Seconds())},
		{"Read1", cfg.Read1},
		{"Read2", cfg.Read2},
		{"Index1", cfg.Index1},
		{"Index2", cfg.Index2},
		{"IndexList", cfg.IndexList},
		{"Extension", cfg.Extension},
		{"Threshold", strconv.Itoa(cfg.Threshold)},
		{"OutputAll", strconv.FormatBool(cfg.OutputAll)},
		{"DontGzip", strconv.FormatBool(cfg.DontGzip)},
		{"FuzzyList", strconv.FormatBool(cfg.FuzzyList)},
		{"NumberReadsInput", strconv.Itoa(acc.Total)},
		{"NumberReadsDemultiplexed", strconv.Itoa(acc.Demultiplexed)},
		{"NumberFuzzyDemultiplexed", strconv.Itoa(acc.Fuzzy)},
		{"NumberIndexClash", strconv.Itoa(acc.Clashes)},
		{},
		{"OutputFile", "IndexUsed"},
	}
	for _, s := range sortedSamples(table) {
		rows = append(rows, []string{s.Name, s.Compound})
	}
	rows = append(rows, nil, []string{"OutputFile", "IndexNumbersUsed(SP1&SP2)"})
	for _, s := range sortedSamples(table) {
		rows = append(rows, []string{s.Name, s.Ix1 + " & " + s.Ix2})
	}
	rows = append(rows, nil, []string{"OutputFile", "NumberReads"})
	for _, name := range sortedDests(acc) {
		rows = append(rows, []string{name, strconv.Itoa(acc.PerDest[name])})
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeFuzzyList writes the identifiers of fuzzy-matched reads, one per
// line, so suspect index reads can be fished out later.
func writeFuzzyList(acc *Accumulator) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	path := nextLogPath(logDir, time.Now().Format("2006_01_02"), "FuzzyMatchedIDs", "txt")
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	for _, id := range acc.FuzzyIDs {
		if _, err := fmt.Fprintln(fh, id); err != nil {
			return err
		}
	}
	return nil
}

func sortedSamples(table *Table) []*Sample {
	out := make([]*Sample, len(table.samples))
	copy(out, table.samples)
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func sortedDests(acc *Accumulator) []string {
	names := make([]string, 0, len(acc.PerDest))
	for name := range acc.PerDest {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
