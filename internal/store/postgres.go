package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const analysisColumns = `id, fingerprint, image_count, image_keys, provider, model, product_name,
	category, confidence, score, attempts, analysis, created_at`

func (s *PostgresStore) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error {
	doc, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	keys := rec.ImageKeys
	if keys == nil {
		keys = []string{}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (`+analysisColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.Fingerprint, rec.ImageCount, keys, rec.Provider, rec.Model, rec.ProductName,
		string(rec.Category), rec.Confidence, rec.Score, rec.Attempts, doc, rec.CreatedAt)
	if isDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)
	rec, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*models.AnalysisRecord, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, string(filter.Category))
		argIdx++
	}
	if filter.Fingerprint != "" {
		conditions = append(conditions, fmt.Sprintf("fingerprint = $%d", argIdx))
		args = append(args, filter.Fingerprint)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM analyses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	limit, offset := Paginate(filter.Page, filter.Limit)
	dataQuery := fmt.Sprintf(
		`SELECT %s FROM analyses WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		analysisColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var recs []*models.AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan analysis: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

// Paginate normalizes page and limit to a LIMIT/OFFSET pair.
// Limit defaults to 20 and is capped at 100; page defaults to 1 and is
// capped so the offset stays within a 32-bit integer.
func Paginate(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	if page > math.MaxInt32/limit {
		page = math.MaxInt32 / limit
	}
	return limit, (page - 1) * limit
}

func scanAnalysis(row pgx.Row) (*models.AnalysisRecord, error) {
	var (
		rec      models.AnalysisRecord
		category string
		doc      []byte
	)
	if err := row.Scan(&rec.ID, &rec.Fingerprint, &rec.ImageCount, &rec.ImageKeys, &rec.Provider,
		&rec.Model, &rec.ProductName, &category, &rec.Confidence, &rec.Score, &rec.Attempts,
		&doc, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Category = models.Category(category)

	var analysis models.NutritionalAnalysis
	if err := json.Unmarshal(doc, &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", rec.ID, err)
	}
	rec.Analysis = &analysis
	return &rec, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*PostgresStore)(nil)
