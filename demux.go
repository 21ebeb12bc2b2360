package main

import (
	"fmt"
	"log"

	"github.com/shenwei356/xopen"
)

const progressEvery = 100000

// demux runs the single sequential pass: advance all input streams by one
// record, classify the tuple's compound index, route the payload records,
// repeat until the shortest stream is exhausted. No read is processed out of
// order and nothing but the current tuple is held in memory.
func demux(cfg *Config, table *Table, acc *Accumulator) error {
	inputs := cfg.inputs()
	readers := make([]*RecordReader, len(inputs))
	for i, path := range inputs {
		fh, err := xopen.Ropen(path)
		if err != nil {
			return err
		}
		defer fh.Close()
		readers[i] = NewRecordReader(fh)
	}

	var extract extractFunc
	if cfg.Mode() == ModeDual {
		extract = dualExtract
	} else {
		extract = embeddedExtract(cfg.BarcodeOffset, cfg.BarcodeLength)
	}

	reg := newDestRegistry(cfg)
	classifier := NewClassifier(table, cfg.Threshold)
	undetDests := destNames(undetermined, cfg.Mode())

	// Every configured sample gets a counter up front so the summary also
	// reports the samples that received nothing.
	for _, s := range table.samples {
		if _, ok := acc.PerDest[s.Name]; !ok {
			acc.PerDest[s.Name] = 0
		}
	}

	err := runLoop(cfg, readers, extract, classifier, reg, undetDests, acc)

	if cerr := reg.closeAll(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	for _, rr := range readers {
		if rerr := rr.Err(); rerr != nil {
			return rerr
		}
	}

	if cfg.OutputAll {
		reg.removeUnused(table, acc)
	}
	return nil
}

func runLoop(cfg *Config, readers []*RecordReader, extract extractFunc,
	classifier *Classifier, reg *destRegistry, undetDests []string, acc *Accumulator) error {

	recs := make([]Record, len(readers))
	for {
		for i, rr := range readers {
			rec, ok := rr.Next()
			if !ok {
				// One stream ran out: end of input for the whole tuple,
				// whatever the other streams still hold.
				return nil
			}
			recs[i] = rec
		}
		acc.Total++
		if !cfg.DontCount && acc.Total%progressEvery == 0 {
			log.Printf("\tread %d", acc.Total)
		}

		compound, payloads := extract(recs)
		out := classifier.Classify(compound)

		var dests []string
		switch out.Kind {
		case matchExact, matchFuzzy:
			dests = out.Sample.Dests
			acc.Demultiplexed++
			acc.PerDest[out.Sample.Name]++
			if out.Kind == matchFuzzy {
				acc.Fuzzy++
				acc.FuzzyIDs = append(acc.FuzzyIDs, recs[0].ID)
			}
		case matchAmbiguous:
			dests = undetDests
			acc.Clashes++
			acc.PerDest[undetermined]++
		case matchNone:
			dests = undetDests
			acc.PerDest[undetermined]++
		}

		for i, dest := range dests {
			if err := reg.write(dest, payloads[i]); err != nil {
				return fmt.Errorf("writing %s after %d reads: %w", dest, acc.Total, err)
			}
		}
	}
}
