// Package table renders ordered records as a box drawn text table suitable for
// sending inside a code block.
package table

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common"
	"golang.org/x/text/width"
)

// Alignment controls how cells are padded
type Alignment uint8

// Alignment values
const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

const (
	defaultVertical   = "│"
	defaultHorizontal = "─"
	defaultJunction   = "┼"
)

var errColumnMismatch = errors.New("row column count does not match header")

// Field is a single named value in a record
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of fields, such as a database row
type Record []Field

// Table holds a header and rows of pre-formatted cells
type Table struct {
	VerticalChar   string
	HorizontalChar string
	JunctionChar   string
	Align          Alignment

	header []string
	rows   [][]string
}

// Option configures a table
type Option func(*Table)

// WithAlignment sets cell alignment
func WithAlignment(a Alignment) Option {
	return func(t *Table) { t.Align = a }
}

// WithChars overrides the box drawing characters
func WithChars(vertical, horizontal, junction string) Option {
	return func(t *Table) {
		t.VerticalChar, t.HorizontalChar, t.JunctionChar = vertical, horizontal, junction
	}
}

// New returns an empty table with the supplied column names
func New(header []string, opts ...Option) *Table {
	t := &Table{
		VerticalChar:   defaultVertical,
		HorizontalChar: defaultHorizontal,
		JunctionChar:   defaultJunction,
		Align:          AlignLeft,
		header:         append([]string(nil), header...),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// FromRecords builds a table whose header is the field names of the first
// record
func FromRecords(records []Record, opts ...Option) (*Table, error) {
	if len(records) == 0 {
		return New(nil, opts...), nil
	}
	header := make([]string, len(records[0]))
	for i := range records[0] {
		header[i] = records[0][i].Name
	}
	t := New(header, opts...)
	for i := range records {
		values := make([]any, len(records[i]))
		for j := range records[i] {
			values[j] = records[i][j].Value
		}
		if err := t.AddRow(values...); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return t, nil
}

// AddRow appends a row, formatting each value
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.header) {
		return fmt.Errorf("%w: got %d want %d", errColumnMismatch, len(values), len(t.header))
	}
	row := make([]string, len(values))
	for i := range values {
		row[i] = formatValue(values[i])
	}
	t.rows = append(t.rows, row)
	return nil
}

// Len returns the amount of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table. A table without columns renders as an empty
// string
func (t *Table) String() string {
	if len(t.header) == 0 {
		return ""
	}
	widths := make([]int, len(t.header))
	for i := range t.header {
		widths[i] = DisplayWidth(t.header[i])
	}
	for _, row := range t.rows {
		for i := range row {
			if w := DisplayWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	rule := t.rule(widths)
	sb.WriteString(rule)
	t.writeRow(&sb, t.header, widths)
	sb.WriteString(rule)
	for _, row := range t.rows {
		t.writeRow(&sb, row, widths)
	}
	if len(t.rows) > 0 {
		sb.WriteString(rule)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (t *Table) rule(widths []int) string {
	var sb strings.Builder
	sb.WriteString(t.JunctionChar)
	for _, w := range widths {
		sb.WriteString(strings.Repeat(t.HorizontalChar, w+2))
		sb.WriteString(t.JunctionChar)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, cells []string, widths []int) {
	sb.WriteString(t.VerticalChar)
	for i := range cells {
		sb.WriteByte(' ')
		sb.WriteString(t.pad(cells[i], widths[i]))
		sb.WriteByte(' ')
		sb.WriteString(t.VerticalChar)
	}
	sb.WriteByte('\n')
}

func (t *Table) pad(cell string, w int) string {
	gap := w - DisplayWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch t.Align {
	case AlignRight:
		return strings.Repeat(" ", gap) + cell
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

// DisplayWidth returns the amount of terminal columns s occupies. East Asian
// wide and fullwidth runes take two columns
func DisplayWidth(s string) int {
	var n int
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return common.FormatTime(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
