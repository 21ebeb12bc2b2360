package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/xopen"
)

// Record is one parsed sequence record. Qual is empty for FASTA input and
// for FASTQ records whose quality block was truncated at end of input.
type Record struct {
	ID   string
	Seq  string
	Qual string
}

// RecordReader lazily parses FASTA/FASTQ records from a decompressed byte
// stream. It tolerates arbitrary physical line wrapping of both sequence and
// quality blocks: the quality block is accumulated until it is at least as
// long as the sequence. A record cut off mid-quality is degraded to a
// quality-less record rather than treated as an error.
//
// Several readers are advanced in lockstep by the driving loop to form read
// tuples; the reader itself holds no more than one pending header line.
type RecordReader struct {
	sc      *bufio.Scanner
	pending string // header line of the next record, if already consumed
	err     error
}

func NewRecordReader(r io.Reader) *RecordReader {
	sc := bufio.NewScanner(r)
	// Sequences and quality strings can be very long single lines.
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &RecordReader{sc: sc}
}

// Next returns the next record, or ok=false once the stream is exhausted or
// a read error occurred (see Err).
func (rr *RecordReader) Next() (rec Record, ok bool) {
	if rr.err != nil {
		return Record{}, false
	}
	if rr.pending == "" {
		for rr.scan() {
			line := rr.line()
			if len(line) > 0 && (line[0] == '@' || line[0] == '>') {
				rr.pending = line
				break
			}
		}
	}
	if rr.pending == "" {
		return Record{}, false
	}

	rec.ID = headerID(rr.pending)
	rr.pending = ""

	var seq strings.Builder
	for rr.scan() {
		line := rr.line()
		if len(line) == 0 {
			continue
		}
		if line[0] == '@' || line[0] == '+' || line[0] == '>' {
			rr.pending = line
			break
		}
		seq.WriteString(line)
	}
	rec.Seq = seq.String()

	if rr.pending == "" || rr.pending[0] != '+' {
		// FASTA record: either end of input or the next header is pending.
		return rec, true
	}
	rr.pending = ""

	var qual strings.Builder
	for qual.Len() < len(rec.Seq) && rr.scan() {
		qual.WriteString(rr.line())
	}
	if qual.Len() >= len(rec.Seq) {
		rec.Qual = qual.String()
	}
	// Otherwise the input ended before enough quality was read; the record
	// keeps its sequence and goes out without quality.
	return rec, true
}

// Err reports the first underlying read error, if any. io.EOF is not an
// error.
func (rr *RecordReader) Err() error {
	return rr.err
}

func (rr *RecordReader) scan() bool {
	if rr.sc.Scan() {
		return true
	}
	rr.err = rr.sc.Err()
	return false
}

func (rr *RecordReader) line() string {
	return strings.TrimRight(rr.sc.Text(), "\r")
}

// headerID strips the format marker and truncates at the first whitespace.
func headerID(header string) string {
	id := header[1:]
	if i := strings.IndexAny(id, " \t"); i >= 0 {
		id = id[:i]
	}
	return id
}

// checkFastq inspects the first four physical lines of a (possibly gzipped)
// file: line 1 must start with '@', line 3 with '+', and the sequence and
// quality lines must have equal length. It runs before any output file is
// created so a malformed input aborts the whole run up front.
func checkFastq(path string) error {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	lines := make([]string, 4)
	for i := range lines {
		line, err := fh.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("%s: fewer than 4 lines, not FASTQ", path)
		}
		lines[i] = strings.TrimRight(line, "\r\n")
	}
	if lines[0] == "" || lines[0][0] != '@' {
		return fmt.Errorf("%s: first header does not start with '@'", path)
	}
	if lines[2] == "" || lines[2][0] != '+' {
		return fmt.Errorf("%s: separator line does not start with '+'", path)
	}
	if len(lines[1]) != len(lines[3]) {
		return fmt.Errorf("%s: sequence length %d != quality length %d",
			path, len(lines[1]), len(lines[3]))
	}
	return nil
}
