package bridge

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/TechXTT/litebridge/pkg/native"
)

// fakeDatabase is a scriptable native.Database that records every call.
type fakeDatabase struct {
	open     bool
	readOnly bool
	inTx     bool

	beginErr error
	markErr  error
	endErr   error
	execErr  error
	result   native.Result

	cols  []string
	rows  [][]driver.Value
	calls []string
}

var _ native.Database = (*fakeDatabase)(nil)

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{open: true}
}

func (f *fakeDatabase) ExecSQL(ctx context.Context, query string, args ...any) error {
	f.calls = append(f.calls, "exec "+query)
	return f.execErr
}

func (f *fakeDatabase) Exec(ctx context.Context, query string, args ...any) (native.Result, error) {
	f.calls = append(f.calls, "exec "+query)
	if f.execErr != nil {
		return native.Result{}, f.execErr
	}
	return f.result, nil
}

func (f *fakeDatabase) Query(ctx context.Context, query string, args ...any) (native.Cursor, error) {
	f.calls = append(f.calls, "query "+query)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return &fakeCursor{cols: f.cols, rows: f.rows}, nil
}

func (f *fakeDatabase) BeginTransaction() error {
	f.calls = append(f.calls, "begin")
	if f.beginErr != nil {
		return f.beginErr
	}
	f.inTx = true
	return nil
}

func (f *fakeDatabase) BeginTransactionNonExclusive() error {
	f.calls = append(f.calls, "beginNonExclusive")
	if f.beginErr != nil {
		return f.beginErr
	}
	f.inTx = true
	return nil
}

func (f *fakeDatabase) SetTransactionSuccessful() error {
	f.calls = append(f.calls, "mark")
	if f.markErr != nil {
		return f.markErr
	}
	if !f.inTx {
		return fmt.Errorf("%w: no current transaction", native.ErrIllegalState)
	}
	return nil
}

func (f *fakeDatabase) EndTransaction() error {
	f.calls = append(f.calls, "end")
	if !f.inTx {
		return fmt.Errorf("%w: no current transaction", native.ErrIllegalState)
	}
	f.inTx = false
	return f.endErr
}

func (f *fakeDatabase) InTransaction() bool { return f.inTx }
func (f *fakeDatabase) IsOpen() bool        { return f.open }
func (f *fakeDatabase) IsReadOnly() bool    { return f.readOnly }
func (f *fakeDatabase) Path() string        { return "fake.db" }

func (f *fakeDatabase) Close() error {
	f.calls = append(f.calls, "close")
	f.open = false
	f.inTx = false
	return nil
}

type fakeCursor struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (c *fakeCursor) Columns() []string { return c.cols }

func (c *fakeCursor) Next(dest []driver.Value) error {
	if c.pos >= len(c.rows) {
		return io.EOF
	}
	copy(dest, c.rows[c.pos])
	c.pos++
	return nil
}

func (c *fakeCursor) Close() error { return nil }
