// Package auth checks the auth block carried by a frame.
//
// It only compares bytes; issuing and storing tokens is left to callers.
package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/danmuck/bincodec/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrMissingAuth  = errors.New("auth: frame has no auth block")
)

// Validator validates the raw auth block of a frame.
type Validator interface {
	Validate(token []byte) error
}

// StaticToken accepts exactly one shared token. An empty token accepts
// nothing.
type StaticToken struct {
	Token []byte
}

func (s StaticToken) Validate(token []byte) error {
	if len(s.Token) == 0 {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(s.Token, token) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token []byte) error

func (f FuncValidator) Validate(token []byte) error {
	return f(token)
}

// Frame validates the auth block of f.
func Frame(v Validator, f frame.Frame) error {
	if len(f.Auth) == 0 {
		log.Warn().Uint64("message_id", f.Header.MessageID).Msg("auth: frame without auth block")
		return ErrMissingAuth
	}
	if err := v.Validate(f.Auth); err != nil {
		log.Warn().Uint64("message_id", f.Header.MessageID).Err(err).Msg("auth: rejected")
		return err
	}
	return nil
}
