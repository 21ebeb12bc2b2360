// Command demux-fastq fuzzily demultiplexes ligation TCR sequencing FASTQ
// data into per-sample files, matching embedded index sequences against a
// sample table with a bounded edit distance.
//
// It takes three (embedded index) or four (dual index) synchronized FASTQ
// files, plain or gzipped, plus an optional comma-delimited sample table of
// `name,index1,index2` rows.
package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"
)

func main() {
	var cfg Config
	flag.StringVar(&cfg.Read1, "r1", "", "Read 1 FASTQ file (required)")
	flag.StringVar(&cfg.Read2, "r2", "", "Read 2 FASTQ file (required)")
	flag.StringVar(&cfg.Index1, "i1", "", "Index read FASTQ file (required)")
	flag.StringVar(&cfg.Index2, "i2", "", "Second index read FASTQ file (enables dual indexing)")
	flag.StringVar(&cfg.IndexList, "ix", "", "Sample/index table file")
	flag.IntVar(&cfg.Threshold, "t", 2, "Edit distance allowed for fuzzy index matching (0 = exact only)")
	flag.BoolVar(&cfg.SuppressSummary, "s", false, "Suppress the run summary under Logs/")
	flag.BoolVar(&cfg.OutputAll, "a", false, "Output all possible index combinations")
	flag.BoolVar(&cfg.DontGzip, "dz", false, "Don't gzip the output FASTQ files")
	flag.BoolVar(&cfg.DontCount, "dc", false, "Don't log the running read count")
	flag.BoolVar(&cfg.FuzzyList, "fl", false, "Write the IDs of fuzzy-matched reads under Logs/")
	flag.StringVar(&cfg.Extension, "ex", "fq", "File extension for output FASTQ files")
	flag.IntVar(&cfg.CompressLevel, "cl", 4, "gzip compression level (1-9) for output files")
	flag.IntVar(&cfg.BarcodeOffset, "bcoffset", 6, "Offset of the embedded index window in read 1 (embedded mode)")
	flag.IntVar(&cfg.BarcodeLength, "bclength", 6, "Length of the embedded index window (embedded mode)")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}
	for _, path := range cfg.inputs() {
		if err := checkFastq(path); err != nil {
			log.Fatal("FASTQ sanity check failed: ", err)
		}
	}

	table := newTable()
	if cfg.IndexList != "" {
		var err error
		table, err = BuildTable(cfg.IndexList, cfg.Mode())
		if err != nil {
			log.Fatal("could not build index table: ", err)
		}
	}
	if cfg.OutputAll {
		if err := AddAllCombinations(table, cfg.Mode()); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("index table holds %d samples", table.Len())

	log.Println("Demultiplexing data...")
	acc := NewAccumulator()
	t0 := time.Now()
	if err := demux(&cfg, table, acc); err != nil {
		log.Fatal(err)
	}
	took := time.Since(t0)

	log.Printf("%d reads processed in %.2fs", acc.Total, took.Seconds())
	log.Printf("%d reads demultiplexed", acc.Demultiplexed)
	log.Printf("%d reads demultiplexed using fuzzy index matching", acc.Fuzzy)
	if acc.Clashes > 0 {
		log.Printf("%d reads had fuzzy index clashes (could have assigned to >1 index) and were discarded", acc.Clashes)
	}

	if !cfg.SuppressSummary {
		if err := writeSummary(&cfg, table, acc, took); err != nil {
			log.Fatal("could not write summary: ", err)
		}
	}
	if cfg.FuzzyList && cfg.Threshold > 0 {
		if err := writeFuzzyList(acc); err != nil {
			log.Fatal("could not write fuzzy-match list: ", err)
		}
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
