package model

// Usuario is the account profile served by GET /user.
type Usuario struct {
	ID       int64  `json:"id,omitempty"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
}

// UsuarioUpdate is the body of PUT /user; an empty Password keeps the current one.
type UsuarioUpdate struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Registro is the body of POST /register.
type Registro struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credenciales is the body of POST /login.
type Credenciales struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
