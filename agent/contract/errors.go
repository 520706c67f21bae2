package contract

import "errors"

var (
	ErrTranslationFailure = errors.New("sql translation failed")
	ErrNonSelectStatement = errors.New("generated statement is not a select")
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrValidation         = errors.New("validation failed")
)
