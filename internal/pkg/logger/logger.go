package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// ZeroLogger implementa Logger sobre o zerolog, escrevendo uma linha JSON por evento.
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewLogger cria o logger da aplicação na saída padrão.
// Níveis aceitos: debug, info, warn, error. Valor inválido cai para info.
func NewLogger(level string) Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter cria o logger escrevendo em w (usado em testes para inspecionar a saída).
func NewWithWriter(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &ZeroLogger{zl: zl}
}

// NewNop devolve um logger que descarta tudo.
func NewNop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error) {
	l.zl.Error().Err(err).Msg(msg)
}

// Fatal registra o erro e encerra o processo (os.Exit(1)).
func (l *ZeroLogger) Fatal(msg string, err error) {
	l.zl.Fatal().Err(err).Msg(msg)
}
