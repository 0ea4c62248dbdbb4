package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine é um produto no carrinho com a quantidade pedida (mínimo 1).
type CartLine struct {
	Product       Product `json:"product"`
	OrderQuantity int     `json:"order_quantity"`
}

// LineTotal devolve price x orderQuantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.OrderQuantity)))
}

// Cart é o conjunto ordenado de linhas ainda não confirmadas, com as observações,
// a filial de retirada e a data escolhida.
// Invariante: no máximo uma linha por ID de produto.
type Cart struct {
	lines    []CartLine
	Notes    string
	Location Location
	Date     time.Time
}

// Add incrementa a linha existente do produto ou anexa uma nova com quantidade 1.
// Não há verificação de estoque aqui; quem valida é o Product Service na confirmação.
func (c *Cart) Add(p Product) CartLine {
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].OrderQuantity++
			return c.lines[i]
		}
	}
	line := CartLine{Product: p, OrderQuantity: 1}
	c.lines = append(c.lines, line)
	return line
}

// ChangeQuantity ajusta a quantidade em delta, nunca abaixo de 1.
// Devolve false se o produto não estiver no carrinho.
func (c *Cart) ChangeQuantity(productID string, delta int) bool {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			q := c.lines[i].OrderQuantity + delta
			if q < 1 {
				q = 1
			}
			c.lines[i].OrderQuantity = q
			return true
		}
	}
	return false
}

// Remove apaga a linha do produto. Devolve false se ela não existir.
func (c *Cart) Remove(productID string) bool {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Line busca a linha de um produto.
func (c *Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.lines {
		if l.Product.ID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Lines devolve uma cópia das linhas na ordem do carrinho.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len devolve o número de linhas.
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty indica se o carrinho não tem linhas.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Total soma price x orderQuantity de todas as linhas (zero para o carrinho vazio).
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Clear esvazia as linhas e as observações. Filial e data são mantidas.
func (c *Cart) Clear() {
	c.lines = nil
	c.Notes = ""
}
