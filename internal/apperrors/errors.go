package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnreconciled indicates a partially applied balance mutation whose
// compensation failed; the attempt is terminal but requires operator attention.
var ErrUnreconciled = errors.New("balance mutation unreconciled")
