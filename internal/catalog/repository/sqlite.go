package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"planogram-studio/internal/planogram/models"
)

// ErrNotFound возвращается, если записи нет.
var ErrNotFound = errors.New("not found")

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init запускает миграции.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Ping проверяет соединение с базой (readiness).
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// Planograms
// ============================================================

type planogramPayload struct {
	Bays  []models.BayDescriptor `json:"bay_details_list"`
	Rules map[string]any         `json:"planogram_rules"`
}

// SavePlanogram сохраняет (или заменяет) снимок планограммы.
func (r *Repository) SavePlanogram(ctx context.Context, s *models.Snapshot) error {
	payload, err := json.Marshal(planogramPayload{Bays: s.Bays, Rules: s.Rules})
	if err != nil {
		return fmt.Errorf("encode planogram: %w", err)
	}

	var version sql.NullInt64
	if s.Version != nil {
		version = sql.NullInt64{Int64: int64(*s.Version), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO planograms (id, version, payload, updated_at)
        VALUES (?, ?, ?, datetime('now'))
        ON CONFLICT(id) DO UPDATE SET
            version = excluded.version,
            payload = excluded.payload,
            updated_at = excluded.updated_at
    `, s.ID, version, string(payload))
	if err != nil {
		return fmt.Errorf("save planogram: %w", err)
	}
	return nil
}

func (r *Repository) GetPlanogram(ctx context.Context, id string) (*models.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT version, payload
        FROM planograms
        WHERE id = ?
    `, id)

	var version sql.NullInt64
	var payload string
	if err := row.Scan(&version, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var p planogramPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("decode planogram %s: %w", id, err)
	}

	s := &models.Snapshot{ID: id, Bays: p.Bays, Rules: p.Rules}
	if version.Valid {
		v := int(version.Int64)
		s.Version = &v
	}
	if s.Bays == nil {
		s.Bays = []models.BayDescriptor{}
	}
	if s.Rules == nil {
		s.Rules = map[string]any{}
	}
	return s, nil
}

// ============================================================
// KPIs
// ============================================================

// ReplaceKPIs заменяет весь набор KPI планограммы.
func (r *Repository) ReplaceKPIs(ctx context.Context, planogramID string, records []models.KPIRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM planogram_kpis WHERE planogram_id = ?`, planogramID); err != nil {
		return fmt.Errorf("clear kpis: %w", err)
	}

	for _, rec := range records {
		tpnb := rec.TPNB()
		if tpnb == "" {
			return fmt.Errorf("kpi record without tpnb")
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode kpi %s: %w", tpnb, err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO planogram_kpis (planogram_id, tpnb, payload)
            VALUES (?, ?, ?)
            ON CONFLICT(planogram_id, tpnb) DO UPDATE SET payload = excluded.payload
        `, planogramID, tpnb, string(payload)); err != nil {
			return fmt.Errorf("insert kpi %s: %w", tpnb, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) ListKPIs(ctx context.Context, planogramID string) ([]models.KPIRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT payload
        FROM planogram_kpis
        WHERE planogram_id = ?
        ORDER BY tpnb
    `, planogramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.KPIRecord, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec models.KPIRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode kpi: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ============================================================
// Master products
// ============================================================

// UpsertProducts добавляет или обновляет мастер-данные товаров.
func (r *Repository) UpsertProducts(ctx context.Context, products []models.ProductDetails) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("product without product_id")
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO products (product_id, tpnb, payload)
            VALUES (?, ?, ?)
            ON CONFLICT(product_id) DO UPDATE SET
                tpnb = excluded.tpnb,
                payload = excluded.payload
        `, string(p.ID), p.TPNB, string(payload)); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) ListProducts(ctx context.Context) ([]models.ProductDetails, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT payload
        FROM products
        ORDER BY product_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.ProductDetails, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var p models.ProductDetails
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
