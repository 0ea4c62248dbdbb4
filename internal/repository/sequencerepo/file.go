package sequencerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
)

// FileStore persiste os contadores num arquivo JSON local, no formato
// {"lastBillNumber": "42"}. Os valores ficam como string para manter o arquivo
// compatível com o que o frontend antigo gravava.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

// NewFileStore cria o armazenamento em path. O arquivo é criado no primeiro Next.
func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Next incrementa o contador de key e grava o arquivo antes de devolver o valor.
func (s *FileStore) Next(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return 0, err
	}

	current, err := parseValue(values, key)
	if err != nil {
		return 0, err
	}

	next := current + 1
	values[key] = strconv.FormatInt(next, 10)
	if err := s.save(values); err != nil {
		return 0, err
	}

	s.logger.Debug("Sequência incrementada.", map[string]interface{}{"key": key, "value": next})
	return next, nil
}

// Last lê o contador de key sem alterá-lo.
func (s *FileStore) Last(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return 0, err
	}
	return parseValue(values, key)
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao ler o arquivo de sequência", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, apperror.NewInternalError(fmt.Sprintf("Arquivo de sequência corrompido (%s)", s.path), err)
	}
	return values, nil
}

// save grava num arquivo temporário e renomeia, para que uma queda no meio da escrita
// não deixe o contador truncado.
func (s *FileStore) save(values map[string]string) error {
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar a sequência", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.NewInternalError("Falha ao criar o diretório da sequência", err)
	}

	tmp, err := os.CreateTemp(dir, ".sequence-*.tmp")
	if err != nil {
		return apperror.NewInternalError("Falha ao criar arquivo temporário da sequência", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperror.NewInternalError("Falha ao gravar a sequência", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperror.NewInternalError("Falha ao gravar a sequência", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperror.NewInternalError("Falha ao gravar a sequência", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperror.NewInternalError("Falha ao substituir o arquivo de sequência", err)
	}
	return nil
}

func parseValue(values map[string]string, key string) (int64, error) {
	raw, ok := values[key]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, apperror.NewInternalError(fmt.Sprintf("Valor inválido para a sequência %q: %q", key, raw), err)
	}
	return n, nil
}
