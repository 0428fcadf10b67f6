package dto

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegistroRequest struct {
	Nombre          string `json:"nombre"          validate:"required"`
	Apellido        string `json:"apellido"        validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=4"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ActualizarPerfilRequest: an empty Password keeps the current one.
type ActualizarPerfilRequest struct {
	Nombre          string `json:"nombre"          validate:"required"`
	Apellido        string `json:"apellido"        validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"omitempty,min=4"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}
