package domain

import (
	"github.com/shopspring/decimal"
)

// Product representa um item do catálogo, exatamente como o Product Service o entrega.
// É somente leitura para o fluxo de requisição; o estoque muda apenas pelos efeitos da baixa.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// NewProduct é o payload de criação de produto (tela "adicionar produto").
type NewProduct struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	InitialStock int             `json:"initialStock"`
}

// ProductFilter define os parâmetros de busca e paginação da listagem de produtos.
// A filtragem é feita localmente sobre a lista completa devolvida pelo serviço.
type ProductFilter struct {
	Page  int
	Limit int
	Name  string
}

// ProductPage é uma página da listagem filtrada.
type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
