// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// DefaultErrorPreviewSize is the maximum number of body bytes quoted in a ResponseError message.
const DefaultErrorPreviewSize = 1024

// ResponseError is returned when a response status fails the invoker's classifier.
type ResponseError struct {
	// Message describes the failure. Defaults to "request failed".
	Message string

	// Response is the complete response that was classified as a failure.
	Response *Response
}

// NewResponseError creates the default error for a failed response.
func NewResponseError(resp *Response) *ResponseError {
	return &ResponseError{
		Message:  "request failed",
		Response: resp,
	}
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Response == nil {
		return msg
	}

	preview := e.Response.Body
	if len(preview) > DefaultErrorPreviewSize {
		preview = preview[:DefaultErrorPreviewSize]
	}
	if preview == "" {
		return fmt.Sprintf("%s with status %d", msg, e.Response.StatusCode)
	}
	return fmt.Sprintf("%s with status %d: %s", msg, e.Response.StatusCode, preview)
}

// StatusCode returns the status of the failed response, or 0 if there is none.
func (e *ResponseError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// IsResponseError checks if an error is a ResponseError with the specified status code.
// If statusCode is 0, it matches any ResponseError.
func IsResponseError(err error, statusCode int) bool {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	if statusCode == 0 {
		return true
	}
	return respErr.StatusCode() == statusCode
}

// IsTransportError reports whether err came from the network before any
// response was received.
func IsTransportError(err error) bool {
	if IsResponseError(err, 0) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
