package auth

import "github.com/erancho/erancho-backend/internal/people"

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	CPF string `json:"cpf" validate:"required,cpf"`
	Pin string `json:"pin" validate:"required"`
}

// LoginResponse carries the person and, for approved accounts, the tokens.
type LoginResponse struct {
	Person       *people.PersonDTO `json:"person"`
	Registered   bool              `json:"registered"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
}

// TokenPair is returned by a refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
