package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medscan/medscan/internal/domain/reference"
)

// ErrAnalysisNotFound is returned when a stored analysis id is unknown.
var ErrAnalysisNotFound = errors.New("analysis not found")

// analysisStorePG persists finished analyses. Results, patterns and
// warnings are stored as JSONB; nothing in the pipeline ever reads them
// back for computation, only for display.
type analysisStorePG struct {
	pool *pgxpool.Pool
}

func NewStorePG(pool *pgxpool.Pool) Store {
	return &analysisStorePG{pool: pool}
}

const analysisColumns = `id, test_type, patient_age, patient_sex,
	ocr_confidence, summary, results, patterns, warnings, created_at`

func (s *analysisStorePG) SaveAnalysis(ctx context.Context, a *Analysis) error {
	results, err := json.Marshal(a.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	patterns, err := json.Marshal(a.Patterns)
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}
	warnings, err := json.Marshal(a.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO analysis (id, test_type, patient_age, patient_sex,
			ocr_confidence, summary, results, patterns, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, string(a.TestType), a.Patient.Age, string(a.Patient.Sex),
		a.OCRConfidence, a.Summary, results, patterns, warnings, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *analysisStorePG) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analysis WHERE id = $1`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis: %w", err)
	}
	return a, nil
}

func (s *analysisStorePG) ListAnalyses(ctx context.Context, limit, offset int) ([]*Analysis, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+analysisColumns+` FROM analysis
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]*Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	return analyses, total, nil
}

func scanAnalysis(row pgx.Row) (*Analysis, error) {
	var (
		a        Analysis
		testType string
		sex      string
		results  []byte
		patterns []byte
		warnings []byte
	)
	err := row.Scan(&a.ID, &testType, &a.Patient.Age, &sex,
		&a.OCRConfidence, &a.Summary, &results, &patterns, &warnings, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.TestType = reference.Panel(testType)
	a.Patient.Sex = reference.Sex(sex)
	if err := json.Unmarshal(results, &a.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	if err := json.Unmarshal(patterns, &a.Patterns); err != nil {
		return nil, fmt.Errorf("unmarshal patterns: %w", err)
	}
	if err := json.Unmarshal(warnings, &a.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	return &a, nil
}
