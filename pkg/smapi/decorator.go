// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package smapi

import (
	"strings"

	"github.com/stacklok/skillctl/pkg/networking"
)

// TokenPath is the path of the OAuth token endpoint on the auth host.
const TokenPath = "/auth/O2/token"

// ExpiredCredentialError is returned when the auth server rejects the stored
// refresh token. It unwraps to the underlying *networking.ResponseError.
type ExpiredCredentialError struct {
	Profile string
	Err     *networking.ResponseError
}

// Error implements the error interface.
func (e *ExpiredCredentialError) Error() string {
	msg := "the stored refresh token was rejected, please try refreshing the access token"
	if e.Profile != "" {
		msg += " by running 'skillctl profile set-token --profile " + e.Profile + "'"
	}
	return msg
}

// Unwrap returns the response error.
func (e *ExpiredCredentialError) Unwrap() error {
	return e.Err
}

// InvalidGrantDecorator replaces the error for a token refresh that failed
// with invalid_grant. Other failures keep the default error.
func InvalidGrantDecorator(req *networking.Request, resp *networking.Response) error {
	return invalidGrantDecorator("")(req, resp)
}

func invalidGrantDecorator(profile string) networking.ErrorDecorator {
	return func(req *networking.Request, resp *networking.Response) error {
		if !strings.HasSuffix(req.URL, TokenPath) || !strings.Contains(resp.Body, "invalid_grant") {
			return nil
		}
		return &ExpiredCredentialError{
			Profile: profile,
			Err:     networking.NewResponseError(resp),
		}
	}
}
