package main

import (
	"bufio"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/shenwei356/xopen"
)

// destWriter is one open output destination. Plain output goes through
// xopen's buffered writer; gzip output uses pgzip so the deflate work for
// many simultaneously open destinations parallelizes, and so the compression
// level is under our control.
type destWriter struct {
	path string
	xw   *xopen.Writer // plain
	f    *os.File      // gzip chain
	gz   *pgzip.Writer
	bw   *bufio.Writer
}

func newDestWriter(path string, gzipped bool, level int) (*destWriter, error) {
	if !gzipped {
		xw, err := xopen.Wopen(path)
		if err != nil {
			return nil, err
		}
		return &destWriter{path: path, xw: xw}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	gz, err := pgzip.NewWriterLevel(f, level)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &destWriter{path: path, f: f, gz: gz, bw: bufio.NewWriterSize(gz, 64*1024)}, nil
}

// writeRecord appends one 4-line record: @id / sequence / + / quality.
func (w *destWriter) writeRecord(rec Record) error {
	var err error
	if w.xw != nil {
		_, err = w.xw.WriteString("@" + rec.ID + "\n" + rec.Seq + "\n+\n" + rec.Qual + "\n")
		return err
	}
	_, err = w.bw.WriteString("@" + rec.ID + "\n" + rec.Seq + "\n+\n" + rec.Qual + "\n")
	return err
}

func (w *destWriter) Close() error {
	if w.xw != nil {
		return w.xw.Close()
	}
	var first error
	if err := w.bw.Flush(); err != nil {
		first = err
	}
	if err := w.gz.Close(); err != nil && first == nil {
		first = err
	}
	if err := w.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// destRegistry maps destination names to writers, opening each destination
// lazily on its first record and holding it open for the rest of the run.
// The compound-index table never holds file handles itself; it only names
// destinations.
type destRegistry struct {
	ext     string
	gzipped bool
	level   int
	writers map[string]*destWriter
}

func newDestRegistry(cfg *Config) *destRegistry {
	return &destRegistry{
		ext:     cfg.Extension,
		gzipped: !cfg.DontGzip,
		level:   cfg.CompressLevel,
		writers: make(map[string]*destWriter),
	}
}

func (r *destRegistry) filename(dest string) string {
	name := dest + "." + r.ext
	if r.gzipped {
		name += ".gz"
	}
	return name
}

func (r *destRegistry) write(dest string, rec Record) error {
	w, ok := r.writers[dest]
	if !ok {
		var err error
		w, err = newDestWriter(r.filename(dest), r.gzipped, r.level)
		if err != nil {
			return err
		}
		r.writers[dest] = w
	}
	return w.writeRecord(rec)
}

// closeAll flushes and closes every destination. All writers are closed even
// if one fails; the first error wins.
func (r *destRegistry) closeAll() error {
	var first error
	for _, w := range r.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.writers = nil
	return first
}

// removeUnused deletes the output files of destinations that received no
// reads and drops their counters. Only meaningful with -a, where the full
// index cross-product would otherwise litter the directory with empty files.
func (r *destRegistry) removeUnused(table *Table, acc *Accumulator) {
	for _, s := range table.samples {
		if acc.PerDest[s.Name] != 0 {
			continue
		}
		for _, dest := range s.Dests {
			// Lazily opened destinations with zero reads usually have no
			// file at all; remove quietly if one exists.
			os.Remove(r.filename(dest))
		}
		delete(acc.PerDest, s.Name)
	}
}
