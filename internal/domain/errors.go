package domain

import (
	"errors"
	"fmt"
)

var ErrAuthRequired = errors.New("authentication required")

// UpstreamError is a non-success status from a load-bearing GitHub call.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github api error on %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("github api error on %s: %d", e.Endpoint, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// InvalidShapeError means the body parsed as JSON but had the wrong structure.
type InvalidShapeError struct {
	What string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("invalid %s received", e.What)
}

type GraphQLError struct {
	Message string
}

func (e *GraphQLError) Error() string {
	return "graphql api error: " + e.Message
}

type InvalidParamError struct {
	Param string
	Value string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q", e.Param, e.Value)
}
