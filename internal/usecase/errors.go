package usecase

import "errors"

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("resource not found")
	ErrAlreadyRegistered       = errors.New("email already registered")
	ErrNotApproved             = errors.New("registration not approved")
	ErrProfileAlreadyCompleted = errors.New("athlete profile already completed")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrDependencyUnavailable   = errors.New("dependency unavailable")
)

// UserMessage maps a service error to the Portuguese message shown to
// applicants and staff. Unknown errors get the generic retry message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return "Este e-mail já está cadastrado. Use a consulta de status para acompanhar sua inscrição."
	case errors.Is(err, ErrProfileAlreadyCompleted):
		return "O cadastro de atleta já foi concluído para esta inscrição."
	case errors.Is(err, ErrNotApproved):
		return "Sua inscrição ainda não foi aprovada."
	case errors.Is(err, ErrNotFound):
		return "Inscrição não encontrada. Verifique o e-mail informado."
	case errors.Is(err, ErrInvalidInput):
		return "Dados inválidos. Revise os campos e tente novamente."
	case errors.Is(err, ErrDependencyUnavailable):
		return "Serviço temporariamente indisponível. Tente novamente em instantes."
	default:
		return "Algo deu errado. Tente novamente."
	}
}
