package main

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/xopen"
)

// sp1Indexes holds the SP1 (read 1 proximal) index sequences, keyed by the
// protocol's index numbers. Index 14 ("ACACGG") was retired for being too
// similar to the others but exists in earlier datasets.
var sp1Indexes = map[string]string{
	"1": "ATCACG", "2": "CGATGT", "3": "TTAGGC", "4": "TGACCA",
	"5": "ACAGTG", "6": "GCCAAT", "7": "CAGATC", "8": "ACTTGA",
	"9": "GATCAG", "10": "TAGCTT", "11": "GGCTAC", "12": "CTTGTA",
	"13": "TAGACT",
}

// sp2Indexes holds the SP2 (index read) sequences. Numbers 27-102 were
// introduced with the v4 protocol revision.
var sp2Indexes = map[string]string{
	"1": "CGTGAT", "2": "ACATCG", "3": "GCCTAA", "4": "TGGTCA",
	"5": "CACTGT", "6": "ATTGGC", "7": "GATCTG", "8": "TCAAGT",
	"9": "CTGATC", "10": "AAGCTA", "11": "GTAGCC", "12": "TACAAG",
	"13": "TTGACT", "14": "GGAACT", "15": "CCTGGTAG", "16": "TAAGCATG",
	"17": "AGATGTGC", "18": "GTCGAGCA", "19": "GAATTGCT", "20": "AAGCAACT",
	"21": "CTAACTGG", "22": "AGGCTCAA", "23": "CAGTTGGT", "24": "TCTGGACC",
	"25": "TGTTATAC", "26": "TCAGCGAA", "27": "ACATAGCG", "28": "TGTGCTTA",
	"29": "GATGTTAC", "30": "GTCTTAGT", "31": "GAGTTACA", "32": "CCATTGTT",
	"33": "TGCGAAGG", "34": "CAACGGTC", "35": "CTTGCAGA", "36": "AGGATGTG",
	"37": "TAGATCCT", "38": "TAGATGAC", "39": "CTAGGTTC", "40": "GTGCGTAA",
	"41": "TCGCACCT", "42": "CGATCATG", "43": "GTTGCGGC", "44": "AGATATAA",
	"45": "CGCCACAG", "46": "AATGCGTT", "47": "GTCAAGTT", "48": "GGAAGGCG",
	"49": "TCCTGGTC", "50": "ACCAAGGA", "51": "AGTGTCTT", "52": "GATTACAG",
	"53": "ACTTCTTC", "54": "GTTCATTA", "55": "TTGCTGGA", "56": "CTGTGGAC",
	"57": "GACTATTG", "58": "CCTTACCT", "59": "GCTAAGTA", "60": "CTTCCTTC",
	"61": "TCGCTATG", "62": "CAGACAAT", "63": "GAGAGTTG", "64": "CCTAGAAT",
	"65": "CAGCAGCA", "66": "GGCTAGGC", "67": "GGCATAGG", "68": "GACGCTAT",
	"69": "ATCCGACA", "70": "TTACTGTC", "71": "TCGACGGC", "72": "CCTGGATA",
	"73": "AACATAAT", "74": "AATGTTGG", "75": "TGGATATC", "76": "TACTTGCA",
	"77": "AGAACATT", "78": "TACCGCTG", "79": "AGAGGAAT", "80": "ATCCGCAG",
	"81": "CATCAGAC", "82": "GGCAGATA", "83": "GATCGTGT", "84": "AGCTCTGG",
	"85": "GTTAGGTC", "86": "CAAGGCGA", "87": "ATGGTAGG", "88": "TCTAGCGA",
	"89": "ACATCCTT", "90": "CGAGTTAG", "91": "ATACCTGT", "92": "GACCGAGA",
	"93": "TCAACTGT", "94": "ACGCATAG", "95": "GGCTCCTG", "96": "TGCGACCT",
	"97": "CCTTGCTG", "98": "TTGATAAT", "99": "CTGATTAA", "100": "TGGTAACG",
	"101": "CTCTACTT", "102": "CTATTCAA",
}

// Sample is one row of the sample table: a named destination bound to the
// compound index that identifies its reads. Destination names are explicit
// per payload stream (one for ModeEmbedded, R1 and R2 for ModeDual) so the
// R2 path is never derived from the R1 path by string substitution.
type Sample struct {
	Name     string
	Compound string
	Dests    []string
	Ix1, Ix2 string // raw table columns, kept for the run summary
}

// Table maps compound indexes to samples. Built once before the main loop,
// immutable afterwards.
type Table struct {
	byCompound map[string]*Sample
	samples    []*Sample // insertion order, for deterministic reporting
}

func newTable() *Table {
	return &Table{byCompound: make(map[string]*Sample)}
}

func (t *Table) add(s *Sample) error {
	for _, existing := range t.samples {
		if existing.Name == s.Name {
			return fmt.Errorf("duplicate sample name %q", s.Name)
		}
	}
	// Compound collisions are not deduplicated: an operator may point two
	// rows at one index on purpose. Last row wins the lookup.
	t.byCompound[s.Compound] = s
	t.samples = append(t.samples, s)
	return nil
}

func (t *Table) Len() int {
	return len(t.samples)
}

// destNames returns the destination name(s) for a sample in the given mode.
func destNames(name string, mode Mode) []string {
	if mode == ModeDual {
		return []string{name + "_R1", name + "_R2"}
	}
	return []string{name}
}

// BuildTable reads the sample table and constructs the index table for the
// given mode. Rows are `name,ix1,ix2`; in ModeEmbedded ix1/ix2 are index
// numbers looked up in the SP1/SP2 dictionaries, in ModeDual they are the
// full index sequences. Parsing stops at the first blank line, which marks
// end of data rather than an error.
func BuildTable(path string, mode Mode) (*Table, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	t := newTable()
	lineno := 0
	for {
		line, err := fh.ReadString('\n')
		lineno++
		row := strings.TrimRight(line, "\r\n")
		if row == "" {
			if err != nil {
				break // end of file
			}
			log.Printf("blank line at %s:%d, presumed end of sample table", path, lineno)
			break
		}
		s, rerr := parseRow(row, mode)
		if rerr != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineno, rerr)
		}
		if aerr := t.add(s); aerr != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineno, aerr)
		}
		if err != nil {
			break
		}
	}
	return t, nil
}

func parseRow(row string, mode Mode) (*Sample, error) {
	fields := strings.Split(row, ",")
	if len(fields) < 3 {
		return nil, fmt.Errorf("want 3 comma-separated fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	name, ix1, ix2 := fields[0], fields[1], fields[2]

	var compound string
	switch mode {
	case ModeEmbedded:
		seq1, ok := sp1Indexes[ix1]
		if !ok {
			return nil, fmt.Errorf("unknown SP1 index %q", ix1)
		}
		seq2, ok := sp2Indexes[ix2]
		if !ok {
			return nil, fmt.Errorf("unknown SP2 index %q", ix2)
		}
		compound = seq1 + seq2
	case ModeDual:
		for _, s := range []string{ix1, ix2} {
			if err := seq.DNAredundant.IsValid([]byte(s)); err != nil {
				return nil, fmt.Errorf("index sequence %q: %w", s, err)
			}
		}
		// The second index read comes first in the observed compound, and
		// index 1 is sequenced in reverse orientation.
		compound = ix2 + revComp(ix1)
	}

	return &Sample{
		Name:     name,
		Compound: compound,
		Dests:    destNames(name, mode),
		Ix1:      ix1,
		Ix2:      ix2,
	}, nil
}

// AddAllCombinations extends the table with every SP1 x SP2 index pair not
// already bound to a configured sample, under a synthetic Indexes_<i>-<j>
// name. Combinations that receive no reads are cleaned up after the run.
func AddAllCombinations(t *Table, mode Mode) error {
	used := make(map[string]bool, len(t.samples))
	for _, s := range t.samples {
		used[s.Compound] = true
	}
	for _, i := range sortedIndexIDs(sp1Indexes) {
		for _, j := range sortedIndexIDs(sp2Indexes) {
			compound := sp1Indexes[i] + sp2Indexes[j]
			if used[compound] {
				continue
			}
			name := "Indexes_" + i + "-" + j
			err := t.add(&Sample{
				Name:     name,
				Compound: compound,
				Dests:    destNames(name, mode),
				Ix1:      i,
				Ix2:      j,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedIndexIDs(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		x, _ := strconv.Atoi(ids[a])
		y, _ := strconv.Atoi(ids[b])
		return x < y
	})
	return ids
}

// revComp reverse-complements a nucleotide sequence using the redundant DNA
// alphabet, so IUPAC ambiguity codes pair correctly and N stays N. Bases the
// alphabet cannot pair are passed through unchanged.
func revComp(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b := s[len(s)-1-i]
		c, err := seq.DNAredundant.PairLetter(b)
		if err != nil {
			c = b
		}
		out[i] = c
	}
	return string(out)
}
