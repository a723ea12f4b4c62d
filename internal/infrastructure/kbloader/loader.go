// Package kbloader reads the bad→good phrase knowledge base from CSV or XLSX
// files into normalized, de-duplicated phrase entries.
package kbloader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

const maxFileBytes = 32 << 20

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes body according to the filename extension. Anything that is
// not .xlsx is treated as CSV.
func (p *Parser) Parse(ctx context.Context, filename string, body io.Reader) ([]domain.PhraseEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		t   table
		err error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		t, err = readXLSX(body)
	} else {
		t, err = readCSV(body)
	}
	if err != nil {
		return nil, err
	}
	return toEntries(t)
}

func readCSV(body io.Reader) (table, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxFileBytes))
	if err != nil {
		return table{}, fmt.Errorf("read csv: %w", err)
	}
	text, enc, ok := decodeText(raw)
	if !ok {
		return table{}, domain.NewError(domain.ErrInvalidInput, "read csv", "no supported text encoding")
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return table{}, domain.WrapError(domain.ErrInvalidInput, "parse csv", err)
	}
	if len(records) == 0 {
		return table{}, domain.NewError(domain.ErrInvalidInput, "parse csv", "file is empty")
	}
	slog.Debug("kb_decoded", "encoding", enc, "rows", len(records)-1)
	return table{header: records[0], rows: records[1:]}, nil
}

func readXLSX(body io.Reader) (table, error) {
	f, err := excelize.OpenReader(body)
	if err != nil {
		return table{}, domain.WrapError(domain.ErrInvalidInput, "open xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, domain.NewError(domain.ErrInvalidInput, "read xlsx", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, domain.WrapError(domain.ErrInvalidInput, "read xlsx rows", err)
	}
	if len(rows) == 0 {
		return table{}, domain.NewError(domain.ErrInvalidInput, "read xlsx", "first sheet is empty")
	}
	return table{header: rows[0], rows: rows[1:]}, nil
}

func toEntries(t table) ([]domain.PhraseEntry, error) {
	cols, ok := inferColumns(t)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidInput, "infer columns",
			fmt.Sprintf("couldn't infer bad/good columns from %q", t.header))
	}

	entries := make([]domain.PhraseEntry, 0, len(t.rows))
	seen := make(map[domain.PhraseEntry]struct{}, len(t.rows))
	for _, row := range t.rows {
		e := domain.PhraseEntry{
			Bad:     lexical.Normalize(t.cell(row, cols.bad)),
			Good:    lexical.Normalize(t.cell(row, cols.good)),
			Context: lexical.Normalize(t.cell(row, cols.context)),
		}
		if e.Bad == "" || e.Good == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		entries = append(entries, e)
	}
	return entries, nil
}

// FileSource serves the knowledge base from a file on disk.
type FileSource struct {
	path   string
	parser *Parser
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, parser: NewParser()}
}

func (s *FileSource) LoadPhrases(ctx context.Context) ([]domain.PhraseEntry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrPhraseSourceNotFound, "read knowledge base", err)
		}
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return s.parser.Parse(ctx, s.path, bytes.NewReader(raw))
}
