package clock

import "time"

// Clock permite injetar o tempo nos serviços (data do documento, data padrão da requisição).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem devolve um relógio baseado em time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

type fixedClock struct {
	now time.Time
}

// NewFixed devolve um relógio que sempre retorna o mesmo instante (útil em testes).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
