package repository

import "errors"

var (
	ErrCatalogNotFound = errors.New("room catalog not found")

	ErrPropertyNotFound = errors.New("property not found")

	ErrUserNotFound = errors.New("user not found")
)
