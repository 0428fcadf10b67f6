package service

import (
	"context"
	"errors"
	"strings"

	"comercioapp/internal/auth"
	"comercioapp/internal/dto"
	"comercioapp/internal/infra"
	"comercioapp/internal/model"

	"github.com/rs/zerolog/log"
)

// AuthService proxies account operations to the remote API. The gateway never
// sees password hashes; it only forwards credentials and returns the token.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Registrar(ctx context.Context, req dto.RegistroRequest) error
	Perfil(ctx context.Context) (*model.Usuario, error)
	ActualizarPerfil(ctx context.Context, req dto.ActualizarPerfilRequest) error
}

type authService struct {
	api CuentaAPI
}

func NewAuthService(api CuentaAPI) AuthService {
	return &authService{api: api}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	token, err := s.api.Login(ctx, model.Credenciales{Email: email, Password: req.Password})
	if err != nil {
		if rechazado(err) {
			log.Info().Str("email", email).Msg("auth: login rejected")
			return nil, ErrCredencialesInvalidas
		}
		return nil, err
	}
	return &dto.LoginResponse{Token: token}, nil
}

func (s *authService) Registrar(ctx context.Context, req dto.RegistroRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordsNoCoinciden
	}
	return s.api.Registrar(ctx, model.Registro{
		Nombre:   strings.TrimSpace(req.Nombre),
		Apellido: strings.TrimSpace(req.Apellido),
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
	})
}

func (s *authService) Perfil(ctx context.Context) (*model.Usuario, error) {
	return s.api.Perfil(ctx)
}

func (s *authService) ActualizarPerfil(ctx context.Context, req dto.ActualizarPerfilRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordsNoCoinciden
	}
	return s.api.ActualizarPerfil(ctx, model.UsuarioUpdate{
		Nombre:   strings.TrimSpace(req.Nombre),
		Apellido: strings.TrimSpace(req.Apellido),
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
	})
}

// rechazado: the API answered and said no (401 or another 4xx).
func rechazado(err error) bool {
	if errors.Is(err, auth.ErrSesionExpirada) {
		return true
	}
	var se *infra.StatusError
	return errors.As(err, &se) && !se.Temporal()
}
