package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// PostgresSource reads venue exports staged in a Postgres table with one
// column per export header plus a venue column.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresSource(pool *pgxpool.Pool, table string) *PostgresSource {
	return &PostgresSource{pool: pool, table: table}
}

// Connect opens a pool for dsn and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return pool, nil
}

func quotedColumns() []string {
	cols := make([]string, len(models.ExportColumns))
	for i, c := range models.ExportColumns {
		cols[i] = pgx.Identifier{c}.Sanitize()
	}
	return cols
}

// EnsureTable creates the staging table if it does not exist. Export cells
// are stored as text, exactly as exported.
func (s *PostgresSource) EnsureTable(ctx context.Context) error {
	defs := []string{"venue text NOT NULL"}
	for _, c := range quotedColumns() {
		defs = append(defs, c+" text")
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{s.table}.Sanitize(), strings.Join(defs, ", "))
	_, err := s.pool.Exec(ctx, query)
	return err
}

// BulkCreate copies a venue's rows into the staging table.
func (s *PostgresSource) BulkCreate(ctx context.Context, venue string, rows []models.TransactionRow) error {
	columns := append([]string{"venue"}, models.ExportColumns...)
	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{s.table},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
			values := rows[i].Values()
			record := make([]interface{}, 0, len(values)+1)
			record = append(record, venue)
			for _, v := range values {
				record = append(record, v)
			}
			return record, nil
		}),
	)
	return err
}

// VenueRows returns every staged row for a venue in insertion order.
func (s *PostgresSource) VenueRows(ctx context.Context, venue string) ([]models.TransactionRow, error) {
	selects := make([]string, len(models.ExportColumns))
	for i, c := range quotedColumns() {
		selects[i] = fmt.Sprintf("COALESCE(%s::text, '')", c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE venue = $1 ORDER BY ctid",
		strings.Join(selects, ", "), pgx.Identifier{s.table}.Sanitize())

	dbRows, err := s.pool.Query(ctx, query, venue)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var rows []models.TransactionRow
	for dbRows.Next() {
		values := make([]string, len(models.ExportColumns))
		dest := make([]interface{}, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := dbRows.Scan(dest...); err != nil {
			return nil, err
		}
		row := models.TransactionRow{Line: len(rows) + 1}
		for i, column := range models.ExportColumns {
			row.SetField(column, values[i])
		}
		rows = append(rows, row)
	}
	return rows, dbRows.Err()
}

// Load reads every configured venue. loaded, if set, is called after each
// venue is read.
func (s *PostgresSource) Load(ctx context.Context, venues []models.Venue, loaded func(models.Venue)) ([]models.VenueRows, error) {
	out := make([]models.VenueRows, 0, len(venues))
	for _, venue := range venues {
		rows, err := s.VenueRows(ctx, venue.Code)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", venue.Code, err)
		}
		out = append(out, models.VenueRows{Venue: venue, Rows: rows})
		if loaded != nil {
			loaded(venue)
		}
	}
	return out, nil
}

// DeleteVenue removes a venue's staged rows.
func (s *PostgresSource) DeleteVenue(ctx context.Context, venue string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE venue = $1", pgx.Identifier{s.table}.Sanitize())
	_, err := s.pool.Exec(ctx, query, venue)
	return err
}
