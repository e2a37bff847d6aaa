package agentdriver

import "errors"

var (
	ErrBinaryNotFound = errors.New("agentdriver: binary not found on PATH")
	ErrAlreadyExited  = errors.New("agentdriver: process already exited")
)
