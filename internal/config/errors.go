package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for settings files of an unknown syntax.
	ErrUnsupportedFormat = errors.New("unsupported settings format")
	// ErrUnknownSetting classifies strict decode failures caused by unknown keys.
	ErrUnknownSetting = errors.New("unknown setting")
)

// DecodeError reports a setting whose value has the wrong shape.
type DecodeError struct {
	Setting string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("setting %s: %v", e.Setting, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
