package typeconv

import "strings"

// CanonicalType normalizes SQL type names for comparison.
func CanonicalType(typ string) string {
	t := strings.ToUpper(strings.TrimSpace(typ))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "INT", "INT4", "INT8", "INTEGER", "BIGINT", "SMALLINT", "TINYINT":
		return "INTEGER"
	case "BOOL", "BOOLEAN":
		return "BOOLEAN"
	case "TEXT", "VARCHAR", "CHAR", "CLOB":
		return "TEXT"
	case "REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE":
		return "REAL"
	case "DATETIME", "TIMESTAMP", "TIMESTAMPTZ":
		return "TIMESTAMP"
	case "UUID":
		return "UUID"
	default:
		return t
	}
}

// Affinity returns the SQLite column affinity of a declared type, using
// SQLite's substring rules in their documented order.
func Affinity(declared string) string {
	t := strings.ToUpper(declared)
	switch {
	case strings.Contains(t, "INT"):
		return "INTEGER"
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return "TEXT"
	case strings.Contains(t, "BLOB"), strings.TrimSpace(t) == "":
		return "BLOB"
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return "REAL"
	default:
		return "NUMERIC"
	}
}

// MapGoTypeToSQL picks a column type for a Go field type.
func MapGoTypeToSQL(goType string) string {
	switch goType {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64",
		"sql.NullInt16", "sql.NullInt32", "sql.NullInt64", "sql.NullByte":
		return "INTEGER"
	case "string", "sql.NullString":
		return "TEXT"
	case "bool", "sql.NullBool":
		return "BOOLEAN"
	case "float32", "float64", "sql.NullFloat64":
		return "REAL"
	case "time.Time", "sql.NullTime":
		return "TIMESTAMP"
	case "[]byte", "[]uint8":
		return "BLOB"
	default:
		return "TEXT"
	}
}
