package termdriver

import "errors"

var (
	ErrInvalidName    = errors.New("termdriver: invalid session name")
	ErrInvalidCwd     = errors.New("termdriver: invalid working directory")
	ErrInvalidEnv     = errors.New("termdriver: invalid environment entry")
	ErrSessionExists  = errors.New("termdriver: session already exists")
	ErrSessionMissing = errors.New("termdriver: no such session")
)
