/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "errors"

// The four error kinds every operation in the game core can fail with.
// All are synchronous and carry only a caller-facing message; the HTTP
// layer maps them to status codes and the websocket layer forwards them
// as gameError events to the originating connection.

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}

func conflictErr(msg string) error {
	return &ConflictError{Message: msg}
}

func notFoundErr(msg string) error {
	return &NotFoundError{Message: msg}
}

func stateErr(msg string) error {
	return &StateError{Message: msg}
}

func isValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func isConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func isNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func isState(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}
