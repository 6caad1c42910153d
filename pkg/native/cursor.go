package native

import (
	"database/sql"
	"database/sql/driver"
	"io"
)

type sqlCursor struct {
	db   *SQLiteDatabase
	rows *sql.Rows
	cols []string
}

func (c *sqlCursor) Columns() []string {
	return c.cols
}

func (c *sqlCursor) Next(dest []driver.Value) error {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return sqliteError("step", "", err)
		}
		return io.EOF
	}
	vals := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return sqliteError("scan", "", err)
	}
	for i, v := range vals {
		dest[i] = v
	}
	return nil
}

func (c *sqlCursor) Close() error {
	c.db.forget(c)
	return c.rows.Close()
}
