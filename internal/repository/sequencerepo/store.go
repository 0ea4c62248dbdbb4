package sequencerepo

import "context"

// SequenceStore guarda o contador de documentos de baixa. Next incrementa e devolve o
// novo valor; Last apenas lê (0 quando nunca foi incrementado).
type SequenceStore interface {
	Next(ctx context.Context, key string) (int64, error)
	Last(ctx context.Context, key string) (int64, error)
}
