package page

import (
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// Scanner walks a directory tree and yields page records.
type Scanner struct {
	resolver *Resolver
}

func NewScanner(resolver *Resolver) *Scanner {
	return &Scanner{resolver: resolver}
}

// Walk yields every visible page under root in lexical walk order.
// Directories and files whose name starts with '_' or '.' are skipped.
// Each iteration re-walks the filesystem; the walk stops at the first error
// or when the consumer stops.
func (s *Scanner) Walk(root string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if p != root && hidden(name) {
					return filepath.SkipDir
				}
				return nil
			}
			if hidden(name) || !IsPageFile(name) {
				return nil
			}

			rec, err := s.resolver.Read(p, root)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					slog.Debug("Page vanished during scan", logfields.Path(p))
					return nil
				}
				return err
			}
			if !yield(rec, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(Record{}, err)
		}
	}
}

// Scan collects Walk into a slice.
func (s *Scanner) Scan(root string) ([]Record, error) {
	var records []Record
	for rec, err := range s.Walk(root) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}
