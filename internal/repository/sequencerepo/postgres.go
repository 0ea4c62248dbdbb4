package sequencerepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
)

// PostgresStore mantém os contadores na tabela document_sequences (ver sql/).
type PostgresStore struct {
	DB      *sql.DB
	timeout time.Duration
	logger  logger.Logger
}

// NewPostgresStore cria o armazenamento. timeout limita cada consulta.
func NewPostgresStore(db *sql.DB, timeout time.Duration, log logger.Logger) *PostgresStore {
	return &PostgresStore{DB: db, timeout: timeout, logger: log}
}

// Next faz o upsert-incremento numa única instrução; a trava de linha do Postgres
// serializa confirmações concorrentes.
func (s *PostgresStore) Next(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	const query = `
		INSERT INTO document_sequences (name, last_value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE
		SET last_value = document_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`

	var n int64
	if err := s.DB.QueryRowContext(ctx, query, key).Scan(&n); err != nil {
		s.logger.Error("Falha ao incrementar sequência no Postgres.", err)
		return 0, apperror.NewDBError("Falha ao gerar número de documento", err)
	}
	return n, nil
}

func (s *PostgresStore) Last(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	err := s.DB.QueryRowContext(ctx, `SELECT last_value FROM document_sequences WHERE name = $1`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.NewDBError("Falha ao ler sequência", err)
	}
	return n, nil
}
