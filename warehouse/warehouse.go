package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"postgres",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		detail := "failed to register warehouse session with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

// Session is a thin handle on a warehouse connection. Queries run
// verbatim; errors propagate to the caller untouched.
type Session struct {
	options Options
	conn    *sql.DB
}

type Result struct {
	Columns []string
	Rows    [][]string
}

// Execute runs the query and materializes every row as strings.
func (s *Session) Execute(ctx context.Context, query string) (*Result, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Columns: columns,
	}

	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Show runs the query and renders the rows as a plain table.
func (s *Session) Show(ctx context.Context, w io.Writer, query string) error {
	result, err := s.Execute(ctx, query)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, strings.Join(result.Columns, " | "))
	for _, row := range result.Rows {
		fmt.Fprintln(w, strings.Join(row, " | "))
	}

	return nil
}

func (s *Session) Close() error {
	return s.conn.Close()
}

func NewSession(opts ...Option) (*Session, error) {
	options := NewOptions(opts...)

	s := &Session{
		options: options,
	}

	if options.Conn != nil {
		s.conn = options.Conn
		return s, nil
	}

	if len(options.Location) == 0 {
		return nil, fmt.Errorf("missing location for warehouse session")
	}

	conn, err := sql.Open(DRIVER, options.Location)
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	s.conn = conn

	return s, nil
}
