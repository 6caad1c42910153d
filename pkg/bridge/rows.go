package bridge

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/TechXTT/litebridge/pkg/native"
)

// Rows is a forward-only cursor over a query result.
type Rows struct {
	cur    native.Cursor
	cols   []string
	row    []driver.Value
	err    error
	closed bool
}

func newRows(cur native.Cursor) *Rows {
	cols := cur.Columns()
	return &Rows{cur: cur, cols: cols, row: make([]driver.Value, len(cols))}
}

// Columns returns the column names.
func (r *Rows) Columns() []string {
	return r.cols
}

func (r *Rows) next(dest []driver.Value) error {
	if r.closed {
		return io.EOF
	}
	if err := r.cur.Next(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return translate(err)
	}
	return nil
}

// Next advances to the next row. It returns false at the end of the rows
// or on error; check Err to tell them apart.
func (r *Rows) Next() bool {
	err := r.next(r.row)
	if err == nil {
		return true
	}
	if !errors.Is(err, io.EOF) {
		r.err = err
	}
	r.Close()
	return false
}

// Err returns the error that stopped iteration, if any.
func (r *Rows) Err() error {
	return r.err
}

// Scan copies the current row into dest, one pointer per column.
func (r *Rows) Scan(dest ...any) error {
	if len(dest) != len(r.cols) {
		return newSQLError(StateGeneral, nil, "expected %d destination arguments in Scan, not %d", len(r.cols), len(dest))
	}
	for i, d := range dest {
		if err := assign(d, r.row[i]); err != nil {
			return newSQLError(StateGeneral, err, "scan column %d (%s): %v", i, r.cols[i], err)
		}
	}
	return nil
}

// Close releases the cursor. Closing twice is a no-op.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return translate(r.cur.Close())
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func assign(dest any, src driver.Value) error {
	if sc, ok := dest.(sql.Scanner); ok {
		return sc.Scan(src)
	}
	if p, ok := dest.(*any); ok {
		*p = src
		return nil
	}
	if src == nil {
		if p, ok := dest.(*[]byte); ok {
			*p = nil
			return nil
		}
		return fmt.Errorf("converting NULL to %T is unsupported", dest)
	}

	switch d := dest.(type) {
	case *string:
		switch s := src.(type) {
		case string:
			*d = s
		case []byte:
			*d = string(s)
		case int64:
			*d = strconv.FormatInt(s, 10)
		case float64:
			*d = strconv.FormatFloat(s, 'g', -1, 64)
		case bool:
			*d = strconv.FormatBool(s)
		case time.Time:
			*d = s.Format(time.RFC3339Nano)
		default:
			return fmt.Errorf("converting %T to string is unsupported", src)
		}
	case *[]byte:
		switch s := src.(type) {
		case []byte:
			*d = append([]byte(nil), s...)
		case string:
			*d = []byte(s)
		default:
			return fmt.Errorf("converting %T to []byte is unsupported", src)
		}
	case *int64:
		n, err := asInt64(src)
		if err != nil {
			return err
		}
		*d = n
	case *int:
		n, err := asInt64(src)
		if err != nil {
			return err
		}
		*d = int(n)
	case *float64:
		switch s := src.(type) {
		case float64:
			*d = s
		case int64:
			*d = float64(s)
		case string:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*d = f
		default:
			return fmt.Errorf("converting %T to float64 is unsupported", src)
		}
	case *bool:
		switch s := src.(type) {
		case bool:
			*d = s
		case int64:
			*d = s != 0
		case string:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			*d = b
		default:
			return fmt.Errorf("converting %T to bool is unsupported", src)
		}
	case *time.Time:
		switch s := src.(type) {
		case time.Time:
			*d = s
		case int64:
			*d = time.Unix(s, 0).UTC()
		case string:
			t, err := parseTime(s)
			if err != nil {
				return err
			}
			*d = t
		default:
			return fmt.Errorf("converting %T to time.Time is unsupported", src)
		}
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}

func asInt64(src driver.Value) (int64, error) {
	switch s := src.(type) {
	case int64:
		return s, nil
	case float64:
		if s != math.Trunc(s) || s < math.MinInt64 || s >= math.MaxInt64 {
			return 0, fmt.Errorf("converting %v to integer loses precision", s)
		}
		return int64(s), nil
	case bool:
		if s {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(s, 10, 64)
	case []byte:
		return strconv.ParseInt(string(s), 10, 64)
	}
	return 0, fmt.Errorf("converting %T to integer is unsupported", src)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as time", s)
}
