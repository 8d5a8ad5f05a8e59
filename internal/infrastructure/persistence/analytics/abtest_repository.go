package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/persistence/database"
)

// SQLABTestRepository persists experiment definitions. Variant lists are
// stored as JSON; derived counters never touch this table.
type SQLABTestRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLABTestRepository creates a new instance of the repository.
func NewSQLABTestRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLABTestRepository {
	return &SQLABTestRepository{db: db, logger: logger}
}

// StoreTest saves an experiment definition.
func (r *SQLABTestRepository) StoreTest(test *analytics.ABTest) error {
	variantsJSON, err := json.Marshal(test.Variants)
	if err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}

	const query = `
		INSERT INTO ab_tests (id, name, status, goal, variants, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		test.ID,
		test.Name,
		string(test.Status),
		test.Goal,
		string(variantsJSON),
		test.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		r.logger.Database().Error("A/B test insert failed", "error", err.Error(), "testId", test.ID)
		return fmt.Errorf("failed to store ab test: %w", err)
	}

	r.logger.Database().Info("A/B test stored", "testId", test.ID, "name", test.Name, "variants", len(test.Variants))
	return nil
}

// FindTest returns one experiment definition, or nil when unknown.
func (r *SQLABTestRepository) FindTest(id string) (*analytics.ABTest, error) {
	const query = `
		SELECT id, name, status, goal, variants, created_at
		FROM ab_tests WHERE id = ?`

	row := r.db.QueryRow(query, id)
	test, err := scanABTest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ab test %s: %w", id, err)
	}
	return test, nil
}

// FindAllTests returns every experiment definition.
func (r *SQLABTestRepository) FindAllTests() ([]*analytics.ABTest, error) {
	const query = `
		SELECT id, name, status, goal, variants, created_at
		FROM ab_tests ORDER BY created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ab tests: %w", err)
	}
	defer rows.Close()

	var tests []*analytics.ABTest
	for rows.Next() {
		test, err := scanABTest(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan ab test row", "error", err.Error())
			continue
		}
		tests = append(tests, test)
	}
	return tests, rows.Err()
}

// UpdateStatus transitions an experiment's lifecycle state.
func (r *SQLABTestRepository) UpdateStatus(id string, status analytics.TestStatus) error {
	result, err := r.db.Exec(`UPDATE ab_tests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update ab test status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("ab test %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanABTest(row rowScanner) (*analytics.ABTest, error) {
	var test analytics.ABTest
	var status, variantsJSON, createdAt string
	var goal sql.NullString

	if err := row.Scan(&test.ID, &test.Name, &status, &goal, &variantsJSON, &createdAt); err != nil {
		return nil, err
	}

	test.Status = analytics.TestStatus(status)
	test.Goal = goal.String
	if err := json.Unmarshal([]byte(variantsJSON), &test.Variants); err != nil {
		return nil, fmt.Errorf("failed to decode variants: %w", err)
	}
	if ts, err := time.Parse(timeLayout, createdAt); err == nil {
		test.CreatedAt = ts.UTC()
	}

	return &test, nil
}
