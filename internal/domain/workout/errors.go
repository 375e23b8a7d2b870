package workout

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrBadRequest    = errors.New("bad request")
	ErrAlreadyExists = errors.New("already exists")
)

var errPlanNotFound = fmt.Errorf("%w: plan not found", ErrNotFound)

func IsErrNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsErrBadRequest(err error) bool    { return errors.Is(err, ErrBadRequest) }
func IsErrAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
