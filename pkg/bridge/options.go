package bridge

// ResultSetType is the scrolling behaviour requested for result rows.
// Rows are always forward-only; the other types are accepted and reported
// as unsupported by MetaData.
type ResultSetType int

const (
	TypeForwardOnly ResultSetType = iota
	TypeScrollInsensitive
	TypeScrollSensitive
)

// Concurrency is the update mode requested for result rows.
type Concurrency int

const (
	ConcurReadOnly Concurrency = iota
	ConcurUpdatable
)

// Holdability controls whether rows stay open across a commit.
type Holdability int

const (
	HoldCursorsOverCommit Holdability = iota
	CloseCursorsAtCommit
)

type statementOptions struct {
	resultSetType ResultSetType
	concurrency   Concurrency
	holdability   Holdability
	generatedKeys bool
	keyColumns    []string
	keyIndexes    []int
	// keysNamed is set when key columns or indexes were passed explicitly.
	keysNamed bool
}

// StatementOption configures CreateStatement and PrepareStatement.
type StatementOption func(*statementOptions)

// WithResultSetType sets the result set type.
func WithResultSetType(t ResultSetType) StatementOption {
	return func(o *statementOptions) { o.resultSetType = t }
}

// WithConcurrency sets the result set concurrency. ConcurUpdatable is
// rejected.
func WithConcurrency(c Concurrency) StatementOption {
	return func(o *statementOptions) { o.concurrency = c }
}

// WithHoldability sets the result set holdability.
func WithHoldability(h Holdability) StatementOption {
	return func(o *statementOptions) { o.holdability = h }
}

// WithGeneratedKeys makes the statement record the row id of inserted rows.
func WithGeneratedKeys() StatementOption {
	return func(o *statementOptions) { o.generatedKeys = true }
}

// WithKeyColumns requests generated keys for the named columns. Exactly
// one column is supported.
func WithKeyColumns(names ...string) StatementOption {
	return func(o *statementOptions) {
		o.keyColumns = names
		o.keysNamed = true
		o.generatedKeys = true
	}
}

// WithKeyIndexes requests generated keys for the given 1-based column
// indexes. Exactly one column is supported.
func WithKeyIndexes(indexes ...int) StatementOption {
	return func(o *statementOptions) {
		o.keyIndexes = indexes
		o.keysNamed = true
		o.generatedKeys = true
	}
}

func buildStatementOptions(opts []StatementOption) (statementOptions, error) {
	var o statementOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency == ConcurUpdatable {
		return o, notSupported("updatable result set")
	}
	if len(o.keyColumns) > 1 || len(o.keyIndexes) > 1 {
		return o, notSupported("generated keys for more than one column")
	}
	if o.keysNamed && len(o.keyColumns)+len(o.keyIndexes) != 1 {
		return o, notSupported("generated keys for other than exactly one column")
	}
	return o, nil
}
