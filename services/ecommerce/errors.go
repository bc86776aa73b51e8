package main

import "errors"

// Erros esperados de recurso ausente, mapeados para 404 nos handlers
var (
	ErrUserNotFound = errors.New("user not found")
	ErrItemNotFound = errors.New("item not found")
	ErrCartNotFound = errors.New("cart not found")
)

// ValidationError indica entrada que viola as regras de negócio (400)
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// Resultados distintos de validação do registro e da submissão de pedidos
var (
	ErrPasswordRequired   = ValidationError{Reason: "password and confirm password are required"}
	ErrPasswordMismatch   = ValidationError{Reason: "password and confirm password do not match"}
	ErrPasswordTooShort   = ValidationError{Reason: "password must have at least 7 characters"}
	ErrPasswordComplexity = ValidationError{Reason: "password must contain at least one digit and one letter"}
	ErrUsernameTaken      = ValidationError{Reason: "username already exists"}
	ErrCartMissing        = ValidationError{Reason: "user has no cart"}
	ErrCartEmpty          = ValidationError{Reason: "cart is empty"}
)
