package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
)

// Filter narrows a read to the matching rows of a table.
type Filter struct {
	// Where is a condition without the WHERE keyword, for example
	// "Session = ?".
	Where string
	Args  []any

	// OrderBy is an ordering without the ORDER BY keywords.
	OrderBy string

	// Limit of 0 reads every row. Offset only applies with a limit.
	Limit  int
	Offset int
}

func (f Filter) where() string {
	if f.Where == "" {
		return ""
	}

	return " WHERE " + f.Where
}

func (f Filter) tail() string {
	var b strings.Builder

	if f.OrderBy != "" {
		b.WriteString(" ORDER BY " + f.OrderBy)
	}

	if f.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", f.Limit)

		if f.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", f.Offset)
		}
	}

	return b.String()
}

// Reader reads back a database written by a DataRecorder.
type Reader struct {
	db *sql.DB
}

// OpenReader opens an existing recording.
func OpenReader(dbFilename string) (*Reader, error) {
	if _, err := os.Stat(dbFilename); err != nil {
		return nil, fmt.Errorf("datarecording: %w", err)
	}

	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, fmt.Errorf("datarecording: %w", err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB reads from an already opened database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Count returns the number of rows of the table that match the filter. The
// ordering and the pagination of the filter are ignored.
func (r *Reader) Count(ctx context.Context, table string, f Filter) (int, error) {
	var n int

	query := "SELECT COUNT(*) FROM " + quoteIdent(table) + f.where()

	err := r.db.QueryRowContext(ctx, query, f.Args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("datarecording: count %s: %w", table, err)
	}

	return n, nil
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Read returns the matching rows of a table as values of T. T is the struct
// type the table was created from; each exported field is read from the
// column of the same name.
func Read[T any](
	ctx context.Context,
	r *Reader,
	table string,
	f Filter,
) ([]T, error) {
	var zero T
	if t := reflect.TypeOf(zero); t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("datarecording: cannot read %s into %T",
			table, zero)
	}

	names := structs.Names(zero)
	query := "SELECT " + strings.Join(quoteIdents(names), ", ") +
		" FROM " + quoteIdent(table) + f.where() + f.tail()

	rows, err := r.db.QueryContext(ctx, query, f.Args...)
	if err != nil {
		return nil, fmt.Errorf("datarecording: read %s: %w", table, err)
	}
	defer rows.Close()

	var results []T

	for rows.Next() {
		var entry T

		v := reflect.ValueOf(&entry).Elem()
		targets := make([]any, len(names))

		for i, name := range names {
			targets[i] = v.FieldByName(name).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("datarecording: read %s: %w", table, err)
		}

		results = append(results, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datarecording: read %s: %w", table, err)
	}

	return results, nil
}
