package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"409"`
	Category string `json:"category" example:"INSUFFICIENT_STOCK"`
	Message  string `json:"message" example:"Estoque insuficiente para o produto 65f1c0"`

	// Preenchidos apenas em falhas de confirmação da requisição.
	DocumentNumber      string   `json:"document_number,omitempty" example:"IB-20240501-0042"`
	CommittedProductIDs []string `json:"committed_product_ids,omitempty"`
	FailedProductID     string   `json:"failed_product_id,omitempty"`
}
