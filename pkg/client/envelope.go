package client

import (
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// Result is the uniform {success, data, message, code} envelope of every backend call
type Result[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data"`
	Message *string `json:"message"`
	Code    *string `json:"code"`

	endpoint string
}

// OK reports whether the backend accepted the call
func (r Result[T]) OK() bool {
	return r.Success
}

// MessageText returns the message or ""
func (r Result[T]) MessageText() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}

// Err returns nil on success and a *RemoteError otherwise
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	msg := r.MessageText()
	if msg == "" {
		msg = "request was rejected"
	}
	remote := &apperrors.RemoteError{Endpoint: r.endpoint, Message: msg}
	if r.Code != nil {
		remote.RemoteCode = *r.Code
	}
	return remote
}

// Value returns the data on success. A successful call without data yields the zero value.
func (r Result[T]) Value() (T, error) {
	var zero T
	if err := r.Err(); err != nil {
		return zero, err
	}
	if r.Data == nil {
		return zero, nil
	}
	return *r.Data, nil
}
