package core

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// isRecord reports whether t is scanned field by field rather than as a
// single value.
func isRecord(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != timeType && !reflect.PointerTo(t).Implements(scannerType)
}

// SnakeCase converts a Go identifier to snake_case: UserID becomes user_id.
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TableName is the snake_case name of a struct type.
func TableName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return SnakeCase(t.Name())
}

// Field is one mapped struct field.
type Field struct {
	Column     string
	Index      int
	Type       reflect.Type
	PrimaryKey bool
}

// Fields lists the exported fields of struct type t with their column
// names. A `db:"name"` tag overrides the snake_case name, `db:"-"` skips
// the field and a ",pk" option marks the primary key.
func Fields(t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		field := Field{Column: SnakeCase(f.Name), Index: i, Type: f.Type}
		if tag, ok := f.Tag.Lookup("db"); ok {
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			if name != "" {
				field.Column = name
			}
			for _, opt := range strings.Split(opts, ",") {
				if opt == "pk" {
					field.PrimaryKey = true
				}
			}
		}
		fields = append(fields, field)
	}
	return fields
}

// ScanRows reads every row into a new element of the slice that dest
// points to. Struct elements are matched by column name and columns
// without a field are discarded. Other element types, including
// time.Time and sql.Scanner implementations, need a single column.
func ScanRows(rows *sql.Rows, dest reflect.Value) error {
	if dest.Kind() != reflect.Ptr || dest.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice")
	}
	slice := dest.Elem()
	elemType := slice.Type().Elem()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to get columns: %w", err)
	}

	var byColumn map[string]int
	if isRecord(elemType) {
		byColumn = make(map[string]int)
		for _, f := range Fields(elemType) {
			byColumn[strings.ToLower(f.Column)] = f.Index
		}
	} else if len(cols) != 1 {
		return fmt.Errorf("cannot scan %d columns into %s", len(cols), elemType)
	}

	for rows.Next() {
		elem := reflect.New(elemType).Elem()
		ptrs := make([]any, len(cols))
		for i, col := range cols {
			if byColumn == nil {
				ptrs[i] = elem.Addr().Interface()
				continue
			}
			idx, ok := byColumn[strings.ToLower(col)]
			if !ok {
				ptrs[i] = new(any)
				continue
			}
			ptrs[i] = elem.Field(idx).Addr().Interface()
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		slice.Set(reflect.Append(slice, elem))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}
