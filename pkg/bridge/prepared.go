package bridge

import "context"

// PreparedStatement runs one SQL text with positional parameters.
type PreparedStatement struct {
	stmt   *Statement
	query  string
	params []any
}

// Conn returns the connection the statement was prepared on.
func (p *PreparedStatement) Conn() *Conn {
	return p.stmt.conn
}

// Query returns the SQL text.
func (p *PreparedStatement) Query() string {
	return p.query
}

// SetParam binds v to the 1-based parameter index.
func (p *PreparedStatement) SetParam(index int, v any) error {
	if index < 1 {
		return newSQLError(StateInvalidParameterIndex, nil, "parameter index %d out of range", index)
	}
	for len(p.params) < index {
		p.params = append(p.params, nil)
	}
	p.params[index-1] = v
	return nil
}

// ClearParams drops every bound parameter.
func (p *PreparedStatement) ClearParams() {
	p.params = nil
}

func (p *PreparedStatement) args(args []any) []any {
	if len(args) > 0 {
		return args
	}
	return p.params
}

// ExecuteQuery runs the statement with args, or with the bound parameters
// when no args are given.
func (p *PreparedStatement) ExecuteQuery(ctx context.Context, args ...any) (*Rows, error) {
	return p.stmt.ExecuteQuery(ctx, p.query, p.args(args)...)
}

// ExecuteUpdate runs the statement and returns the number of rows changed.
func (p *PreparedStatement) ExecuteUpdate(ctx context.Context, args ...any) (int64, error) {
	return p.stmt.ExecuteUpdate(ctx, p.query, p.args(args)...)
}

// Execute runs the statement; see Statement.Execute.
func (p *PreparedStatement) Execute(ctx context.Context, args ...any) (bool, error) {
	return p.stmt.Execute(ctx, p.query, p.args(args)...)
}

// ResultRows returns the rows of the last execution, or nil.
func (p *PreparedStatement) ResultRows() *Rows {
	return p.stmt.ResultRows()
}

// UpdateCount returns the rows changed by the last execution.
func (p *PreparedStatement) UpdateCount() int64 {
	return p.stmt.UpdateCount()
}

// GeneratedKeys returns the row id of the last inserted row.
func (p *PreparedStatement) GeneratedKeys() (int64, error) {
	return p.stmt.GeneratedKeys()
}

func (p *PreparedStatement) Close() error {
	return p.stmt.Close()
}
