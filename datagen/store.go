package datagen

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb/v2"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id INTEGER PRIMARY KEY,
		first_name VARCHAR,
		last_name VARCHAR,
		email VARCHAR,
		phone VARCHAR,
		date_of_birth DATE,
		address VARCHAR,
		city VARCHAR,
		state VARCHAR,
		zip_code VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS policies (
		policy_id INTEGER PRIMARY KEY,
		customer_id INTEGER,
		policy_type VARCHAR,
		coverage_amount DECIMAL(12,2),
		premium_amount DECIMAL(10,2),
		start_date DATE,
		end_date DATE,
		status VARCHAR,
		FOREIGN KEY (customer_id) REFERENCES customers(customer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS claims (
		claim_id INTEGER PRIMARY KEY,
		policy_id INTEGER,
		claim_amount DECIMAL(12,2),
		claim_date DATE,
		claim_status VARCHAR,
		claim_type VARCHAR,
		description TEXT,
		FOREIGN KEY (policy_id) REFERENCES policies(policy_id)
	)`,
}

// Store owns the portfolio database file and its schema.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// Reset clears all rows. Children go first so foreign keys hold at
// every point.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"claims", "policies", "customers"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Load replaces the store contents with the given portfolio in one
// transaction.
func (s *Store) Load(ctx context.Context, customers []Customer, policies []Policy, claims []Claim) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	if err := insertCustomers(ctx, tx, customers); err != nil {
		return err
	}
	if err := insertPolicies(ctx, tx, policies); err != nil {
		return err
	}
	if err := insertClaims(ctx, tx, claims); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func insertCustomers(ctx context.Context, tx *sql.Tx, customers []Customer) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO customers VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare customers insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range customers {
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
			c.DateOfBirth, c.Address, c.City, c.State, c.ZipCode,
		); err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	return nil
}

func insertPolicies(ctx context.Context, tx *sql.Tx, policies []Policy) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO policies VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare policies insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range policies {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.CustomerID, p.Type, p.CoverageAmount,
			p.PremiumAmount, p.StartDate, p.EndDate, p.Status,
		); err != nil {
			return fmt.Errorf("insert policy %d: %w", p.ID, err)
		}
	}
	return nil
}

func insertClaims(ctx context.Context, tx *sql.Tx, claims []Claim) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO claims VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare claims insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range claims {
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.PolicyID, c.Amount, c.Date,
			c.Status, c.Type, c.Description,
		); err != nil {
			return fmt.Errorf("insert claim %d: %w", c.ID, err)
		}
	}
	return nil
}

// Summary aggregates the stored portfolio for the post-generation
// report.
type Summary struct {
	Customers      int
	PoliciesByType map[string]int
	ClaimsByStatus map[string]int
	TotalCoverage  float64
	TotalPremiums  float64
	TotalClaims    float64
}

func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	summary := Summary{
		PoliciesByType: map[string]int{},
		ClaimsByStatus: map[string]int{},
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM customers").Scan(&summary.Customers); err != nil {
		return Summary{}, fmt.Errorf("count customers: %w", err)
	}

	if err := s.countBy(ctx,
		"SELECT policy_type, COUNT(*) FROM policies GROUP BY policy_type ORDER BY policy_type",
		summary.PoliciesByType,
	); err != nil {
		return Summary{}, err
	}

	if err := s.countBy(ctx,
		"SELECT claim_status, COUNT(*) FROM claims GROUP BY claim_status ORDER BY claim_status",
		summary.ClaimsByStatus,
	); err != nil {
		return Summary{}, err
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(coverage_amount), 0), COALESCE(SUM(premium_amount), 0) FROM policies",
	).Scan(&summary.TotalCoverage, &summary.TotalPremiums); err != nil {
		return Summary{}, fmt.Errorf("sum policies: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(claim_amount), 0) FROM claims",
	).Scan(&summary.TotalClaims); err != nil {
		return Summary{}, fmt.Errorf("sum claims: %w", err)
	}

	return summary, nil
}

func (s *Store) countBy(ctx context.Context, query string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}
