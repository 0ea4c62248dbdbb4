package productapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperror "stockdesk/internal/errors"
)

// InsufficientStockMessage é a mensagem que o Product Service devolve quando a baixa
// excede o estoque disponível.
const InsufficientStockMessage = "Insufficient stock"

// APIError é uma resposta de erro (status >= 400) do Product Service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("product service respondeu %d", e.StatusCode)
	}
	return fmt.Sprintf("product service respondeu %d: %s", e.StatusCode, e.Message)
}

// IsInsufficientStock indica se err carrega o payload {"message": "Insufficient stock"}.
func IsInsufficientStock(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message == InsufficientStockMessage
	}
	return false
}

// Client encapsula o acesso HTTP/JSON ao Product Service: URL base, timeout por
// chamada e tradução das respostas de erro.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient cria o cliente. timeout vale para cada requisição individual.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Do executa method em path, enviando body como JSON (se não nil) e decodificando a
// resposta em out (se não nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("falha ao serializar payload de %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("falha ao montar requisição %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("falha de rede em %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("resposta inválida de %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// Translate converte um erro do Product Service no erro de aplicação correspondente.
// Erros sem status conhecido (rede, 5xx) viram InternalError mantendo a causa na cadeia.
func Translate(err error, msg string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = msg
		}
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return apperror.NewValidationError(detail)
		case http.StatusNotFound:
			return apperror.NewNotFoundError(detail)
		case http.StatusConflict:
			return apperror.NewConflictError(detail)
		}
	}
	return apperror.NewInternalError(msg, err)
}
