package main

import (
	"errors"
	"fmt"
)

// Mode selects how the compound index is extracted from a read tuple and how
// many payload records each read produces. It is fixed once, before any file
// is opened, rather than re-inspected per read.
type Mode int

const (
	// ModeEmbedded takes three streams (read 1, index read, read 2); the
	// second half of the compound index is embedded in read 1 at a fixed
	// window and the output is a single rearranged record per read.
	ModeEmbedded Mode = iota
	// ModeDual takes four streams (read 1, index 1, read 2, index 2); the
	// compound index is built from the two index reads and reads 1 and 2
	// pass through verbatim as R1/R2 outputs.
	ModeDual
)

// Config carries the validated run settings. Flag parsing happens in main;
// everything downstream consumes values only.
type Config struct {
	Read1  string
	Read2  string
	Index1 string
	Index2 string // empty selects ModeEmbedded

	IndexList string // sample table path; optional when OutputAll is set

	Threshold       int // max edit distance for fuzzy matching; 0 = exact only
	OutputAll       bool
	SuppressSummary bool
	DontGzip        bool
	DontCount       bool
	FuzzyList       bool
	Extension       string
	CompressLevel   int

	// Window of read 1 holding the embedded index half in ModeEmbedded.
	// The defaults (offset 6, length 6) match the ligation protocol layout.
	BarcodeOffset int
	BarcodeLength int
}

func (c *Config) Mode() Mode {
	if c.Index2 != "" {
		return ModeDual
	}
	return ModeEmbedded
}

func (c *Config) validate() error {
	if c.Read1 == "" || c.Read2 == "" || c.Index1 == "" {
		return errors.New("read 1, read 2 and index 1 FASTQ files are all required")
	}
	if c.IndexList == "" && !c.OutputAll {
		return errors.New("no index list provided and -a not enabled; one (or both) is required")
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	if c.CompressLevel < 1 || c.CompressLevel > 9 {
		return fmt.Errorf("compression level must be 1-9, got %d", c.CompressLevel)
	}
	if c.BarcodeOffset < 0 || c.BarcodeLength <= 0 {
		return fmt.Errorf("invalid barcode window %d:%d", c.BarcodeOffset, c.BarcodeOffset+c.BarcodeLength)
	}
	return nil
}

// inputs lists the FASTQ paths for the selected mode, in stream order.
func (c *Config) inputs() []string {
	if c.Mode() == ModeDual {
		return []string{c.Read1, c.Index1, c.Read2, c.Index2}
	}
	return []string{c.Read1, c.Index1, c.Read2}
}
