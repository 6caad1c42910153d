package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/TechXTT/litebridge/pkg/bridge"
)

// NewExecCmd builds the `exec` command.
func NewExecCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a statement that returns no rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, _, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := db.ExecContext(ctx, args[0])
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) affected\n", n)
			return nil
		},
	}
}

// NewQueryCmd builds the `query` command.
func NewQueryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print its rows as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, _, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.QueryContext(ctx, args[0])
			if err != nil {
				return err
			}
			defer rows.Close()
			return printRows(cmd.OutOrStdout(), rows)
		},
	}
}

// NewTablesCmd builds the `tables` command.
func NewTablesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, _, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			return withMetaData(ctx, db, func(md *bridge.MetaData) error {
				tables, err := md.Tables(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tTYPE")
				for _, t := range tables {
					fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Type)
				}
				return w.Flush()
			})
		},
	}
}

// NewDescribeCmd builds the `describe` command.
func NewDescribeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, _, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			return withMetaData(ctx, db, func(md *bridge.MetaData) error {
				cols, err := md.Columns(ctx, args[0])
				if err != nil {
					return err
				}
				if len(cols) == 0 {
					return fmt.Errorf("no such table: %s", args[0])
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "#\tNAME\tTYPE\tAFFINITY\tNULL\tDEFAULT\tPK")
				for _, c := range cols {
					dflt := ""
					if c.Default != nil {
						dflt = *c.Default
					}
					pk := ""
					if c.PrimaryKey > 0 {
						pk = fmt.Sprint(c.PrimaryKey)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\t%s\n",
						c.Position, c.Name, c.DeclaredType, c.Affinity, c.Nullable, dflt, pk)
				}
				return w.Flush()
			})
		},
	}
}

// withMetaData runs fn with the metadata of a pooled bridge connection.
func withMetaData(ctx context.Context, db *sql.DB, fn func(*bridge.MetaData) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Raw(func(dc any) error {
		c, ok := bridge.Unwrap(dc)
		if !ok {
			return fmt.Errorf("connection is not a litebridge connection (%T)", dc)
		}
		return fn(c.MetaData())
	})
}

func printRows(out io.Writer, rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(cols, "\t")))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "(%d row(s))\n", count)
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
