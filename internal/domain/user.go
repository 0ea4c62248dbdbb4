package domain

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User é o usuário como o Product Service o devolve. A senha nunca é exposta.
type User struct {
	ID       string   `json:"_id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	UID      string   `json:"uid"`
	Role     UserRole `json:"role"`
}

// UserRegistration é o payload da tela "adicionar usuário" (POST /users).
type UserRegistration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	UID      string `json:"uid"`
}
