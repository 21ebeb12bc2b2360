package main

import (
	"fmt"
	"sort"
	"testing"
)

func tableOf(t *testing.T, samples map[string]string) *Table {
	t.Helper()
	table := newTable()
	for _, name := range sortedKeys(samples) {
		err := table.add(&Sample{
			Name:     name,
			Compound: samples[name],
			Dests:    destNames(name, ModeEmbedded),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestClassify(t *testing.T) {
	type test struct {
		name       string
		table      map[string]string
		threshold  int
		compound   string
		wantKind   matchKind
		wantSample string
		wantDist   int
		wantCands  int
	}

	tests := []test{
		{
			name:       "exact match",
			table:      map[string]string{"S1": "AAAAAACCCCCC"},
			threshold:  2,
			compound:   "AAAAAACCCCCC",
			wantKind:   matchExact,
			wantSample: "S1",
		},
		{
			name:       "exact match wins even at threshold zero",
			table:      map[string]string{"S1": "AAAAAACCCCCC"},
			threshold:  0,
			compound:   "AAAAAACCCCCC",
			wantKind:   matchExact,
			wantSample: "S1",
		},
		{
			name:       "single substitution is a fuzzy match at distance 1",
			table:      map[string]string{"S1": "AAAAAACCCCCC"},
			threshold:  2,
			compound:   "AAAAAACCCCCT",
			wantKind:   matchFuzzy,
			wantSample: "S1",
			wantDist:   1,
		},
		{
			name:       "deletion counts toward edit distance",
			table:      map[string]string{"S1": "AAAAAACCCCCC"},
			threshold:  2,
			compound:   "AAAAACCCCCC",
			wantKind:   matchFuzzy,
			wantSample: "S1",
			wantDist:   1,
		},
		{
			name:      "two candidates within threshold is ambiguous",
			table:     map[string]string{"S1": "AAAAAACCCCCC", "S2": "AAAAAACCCCCG"},
			threshold: 2,
			compound:  "AAAAAACCCCCA",
			wantKind:  matchAmbiguous,
			wantCands: 2,
		},
		{
			name:      "threshold zero disables fuzzy matching",
			table:     map[string]string{"S1": "AAAAAACCCCCC"},
			threshold: 0,
			compound:  "AAAAAACCCCCT",
			wantKind:  matchNone,
		},
		{
			name:      "nothing within threshold",
			table:     map[string]string{"S1": "AAAAAACCCCCC"},
			threshold: 2,
			compound:  "GGGGGGTTTTTT",
			wantKind:  matchNone,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewClassifier(tableOf(t, test.table), test.threshold)
			out := c.Classify(test.compound)
			if out.Kind != test.wantKind {
				t.Fatalf("Kind = %v, want %v", out.Kind, test.wantKind)
			}
			if test.wantSample != "" && (out.Sample == nil || out.Sample.Name != test.wantSample) {
				t.Errorf("Sample = %#v, want %q", out.Sample, test.wantSample)
			}
			if out.Distance != test.wantDist {
				t.Errorf("Distance = %d, want %d", out.Distance, test.wantDist)
			}
			if out.Candidates != test.wantCands {
				t.Errorf("Candidates = %d, want %d", out.Candidates, test.wantCands)
			}

			// Classification is idempotent: the memoized answer equals a
			// fresh one.
			again := c.Classify(test.compound)
			if again != out {
				t.Errorf("second Classify = %#v, want %#v", again, out)
			}
			fresh := NewClassifier(tableOf(t, test.table), test.threshold).Classify(test.compound)
			if fresh.Kind != out.Kind || fresh.Distance != out.Distance || fresh.Candidates != out.Candidates {
				t.Errorf("fresh classifier = %#v, want %#v", fresh, out)
			}
		})
	}
}

func TestEmbeddedExtract(t *testing.T) {
	extract := embeddedExtract(6, 6)
	recs := []Record{
		{ID: "read1", Seq: "NNNNNNATCACGTTTTGGGG", Qual: "00000011111122223333"},
		{ID: "index1", Seq: "CGTGAT", Qual: "444444"},
		{ID: "read2", Seq: "CCCCC", Qual: "55555"},
	}
	compound, payloads := extract(recs)

	if compound != "ATCACGCGTGAT" {
		t.Errorf("compound = %q, want ATCACGCGTGAT", compound)
	}
	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1", len(payloads))
	}
	p := payloads[0]
	if p.ID != "read1" {
		t.Errorf("payload ID = %q, want read1", p.ID)
	}
	// [first 45b of read 2][read-1 window][index read][rest of read 1]
	if want := "CCCCC" + "ATCACG" + "CGTGAT" + "TTTTGGGG"; p.Seq != want {
		t.Errorf("payload Seq = %q, want %q", p.Seq, want)
	}
	if want := "55555" + "111111" + "444444" + "22223333"; p.Qual != want {
		t.Errorf("payload Qual = %q, want %q", p.Qual, want)
	}
}

func TestEmbeddedExtractShortReads(t *testing.T) {
	// Reads shorter than the barcode window must not panic; the compound
	// index just comes up short and will not match anything.
	extract := embeddedExtract(6, 6)
	recs := []Record{
		{ID: "r1", Seq: "ACGT", Qual: "IIII"},
		{ID: "i1", Seq: "CGTGAT", Qual: "IIIIII"},
		{ID: "r2", Seq: "CC", Qual: "II"},
	}
	compound, payloads := extract(recs)
	if compound != "CGTGAT" {
		t.Errorf("compound = %q, want CGTGAT", compound)
	}
	if payloads[0].Seq != "CC"+"CGTGAT" {
		t.Errorf("payload Seq = %q", payloads[0].Seq)
	}
}

func TestDualExtract(t *testing.T) {
	recs := []Record{
		{ID: "r1", Seq: "AAAA", Qual: "IIII"},
		{ID: "i1", Seq: "CGTGAT", Qual: "IIIIII"},
		{ID: "r2", Seq: "TTTT", Qual: "JJJJ"},
		{ID: "i2", Seq: "ATCACG", Qual: "IIIIII"},
	}
	compound, payloads := dualExtract(recs)

	if compound != "ATCACG"+"CGTGAT" {
		t.Errorf("compound = %q, want ATCACGCGTGAT", compound)
	}
	if len(payloads) != 2 {
		t.Fatalf("got %d payloads, want 2", len(payloads))
	}
	if payloads[0] != recs[0] || payloads[1] != recs[2] {
		t.Errorf("payloads = %#v, want reads 1 and 3 verbatim", payloads)
	}
}

func BenchmarkClassify(b *testing.B) {
	table := newTable()
	for i := 0; i < 100; i++ {
		compound := fmt.Sprintf("%06d", i)
		table.add(&Sample{Name: compound, Compound: compound, Dests: []string{compound}})
	}
	for threshold := 0; threshold <= 4; threshold++ {
		b.Run(fmt.Sprintf("Threshold%d", threshold), func(b *testing.B) {
			b.ReportAllocs()
			c := NewClassifier(table, threshold)
			for n := 0; n < b.N; n++ {
				// Vary the input so the memo does not absorb the loop.
				c.memo = map[string]Outcome{}
				c.Classify("999999")
			}
		})
	}
}
