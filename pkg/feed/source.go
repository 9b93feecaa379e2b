package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	fterrors "github.com/matzehuels/transitcal/pkg/errors"
)

// TableSource provides tables by file name. Implementations memoize or not
// as they see fit; callers must treat returned tables as read-only.
type TableSource interface {
	Table(name string) (*Table, error)
}

// DirSource reads tables as CSV files from a directory.
//
// A table whose file does not exist is returned as an empty table with no
// columns, so optional GTFS files degrade to "no rows".
type DirSource struct {
	dir    string
	logger *log.Logger
}

// NewDirSource returns a source rooted at dir. A nil logger uses log.Default().
func NewDirSource(dir string, logger *log.Logger) *DirSource {
	if logger == nil {
		logger = log.Default()
	}
	return &DirSource{dir: dir, logger: logger}
}

// Dir returns the directory the source reads from.
func (s *DirSource) Dir() string { return s.dir }

// Table reads and parses <dir>/<name>.
func (s *DirSource) Table(name string) (*Table, error) {
	if err := fterrors.ValidateTableName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("table missing", "table", name)
		return NewTable(nil, nil), nil
	}
	if err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidInput, err, "open %s", name)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeParse, err, "read %s", name)
	}
	s.logger.Debug("read table", "table", name, "rows", t.Len())
	return t, nil
}

// ReadCSV parses a CSV stream whose first record is the header. A leading
// byte-order mark selects UTF-8 or UTF-16 decoding. Header names and values
// are trimmed of surrounding whitespace. Short rows are padded with empty
// strings; extra trailing fields are dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return NewTable(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			row[col] = v
		}
		rows = append(rows, row)
	}
	return &Table{columns: columns, rows: rows}, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
