// Package postgres implements the optional database audit sink.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("audit database connection established")

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing audit database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// InitSchema creates the audit trail table and its indexes.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS eventos_auditoria (
			id UUID PRIMARY KEY,
			sessao_id UUID NOT NULL,
			usuario_id VARCHAR(255) NOT NULL,
			evento_tipo VARCHAR(100) NOT NULL,
			nivel VARCHAR(20) NOT NULL,
			dados_entrada JSONB,
			dados_saida JSONB,
			tempo_execucao_ms DOUBLE PRECISION,
			ip_origem VARCHAR(45),
			user_agent TEXT,
			componente VARCHAR(100),
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_eventos_auditoria_sessao_id ON eventos_auditoria(sessao_id);
		CREATE INDEX IF NOT EXISTS idx_eventos_auditoria_evento_tipo ON eventos_auditoria(evento_tipo);
		CREATE INDEX IF NOT EXISTS idx_eventos_auditoria_nivel ON eventos_auditoria(nivel);
		CREATE INDEX IF NOT EXISTS idx_eventos_auditoria_timestamp ON eventos_auditoria(timestamp);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	db.logger.Info("audit schema initialized")
	return nil
}
