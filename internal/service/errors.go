package service

import (
	"errors"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
)

var (
	ErrValidation           = errors.New("validation")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrConflict             = errors.New("conflict")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyCart            = domain.ErrEmptyCart
)
