package requisitionservice

import (
	"context"
	"fmt"

	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/clock"
)

// SequenceStore é o contador atômico usado para emitir números de documento.
type SequenceStore interface {
	Next(ctx context.Context, key string) (int64, error)
}

// DocumentNumberIssuer é a única autoridade que emite números de documento.
// Cada chamada a Issue consome exatamente um valor da sequência.
type DocumentNumberIssuer struct {
	store SequenceStore
	key   string
	clock clock.Clock
}

// NewDocumentNumberIssuer cria o emissor sobre a chave key do store.
func NewDocumentNumberIssuer(store SequenceStore, key string, clk clock.Clock) *DocumentNumberIssuer {
	return &DocumentNumberIssuer{store: store, key: key, clock: clk}
}

// Issue incrementa a sequência e devolve IB-<data de hoje>-<seq>.
func (i *DocumentNumberIssuer) Issue(ctx context.Context) (string, error) {
	seq, err := i.store.Next(ctx, i.key)
	if err != nil {
		return "", fmt.Errorf("emissão do número de documento: %w", err)
	}
	return domain.FormatDocumentNumber(i.clock.Now(), seq), nil
}

// Placeholder é o número exibido antes de existir uma tentativa de confirmação.
func (i *DocumentNumberIssuer) Placeholder() string {
	return domain.DocumentNumberPlaceholder(i.clock.Now())
}
