// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking sends single HTTP requests for the skill-management
// client, converting between header representations, classifying responses
// and optionally recording a debug log of every exchange.
package networking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/logger"
)

// DefaultMinErrorCode is the lowest status code treated as a failure by default.
const DefaultMinErrorCode = 400

// Request describes one outgoing HTTP call. The invoker does not modify it.
type Request struct {
	Method  string
	URL     string
	Headers Headers
	Body    string
}

// Response is the fully buffered result of one HTTP call.
type Response struct {
	StatusCode int
	Headers    Headers
	Body       string
}

// StatusClassifier reports whether a status code counts as success.
type StatusClassifier func(statusCode int) bool

// ErrorDecorator builds the error returned for a response that failed
// classification. Returning nil selects the default *ResponseError.
type ErrorDecorator func(req *Request, resp *Response) error

// MinErrorCode classifies every status below code as success.
func MinErrorCode(code int) StatusClassifier {
	return func(statusCode int) bool {
		return statusCode < code
	}
}

// Is2xx classifies only 2xx statuses as success.
func Is2xx(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// Invoker issues a single HTTP request per call and classifies the response.
// It is safe for concurrent use; calls share nothing but the debug log.
type Invoker struct {
	client         HTTPClient
	debugLog       *DebugLog
	logExchanges   bool
	isSuccess      StatusClassifier
	errorDecorator ErrorDecorator
	userAgent      string
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithHTTPClient sets the client used to send requests.
func WithHTTPClient(client HTTPClient) InvokerOption {
	return func(inv *Invoker) {
		inv.client = client
	}
}

// WithDebugLog records every request and response Invoke handles in log.
func WithDebugLog(log *DebugLog) InvokerOption {
	return func(inv *Invoker) {
		inv.debugLog = log
		inv.logExchanges = true
	}
}

// WithDebugHooks attaches log to LogRequest and LogResponse without having
// Invoke call them. Callers register the hooks wherever the exchange should
// be recorded, such as client interceptors.
func WithDebugHooks(log *DebugLog) InvokerOption {
	return func(inv *Invoker) {
		inv.debugLog = log
		inv.logExchanges = false
	}
}

// WithSuccessPredicate replaces the status classifier.
func WithSuccessPredicate(isSuccess StatusClassifier) InvokerOption {
	return func(inv *Invoker) {
		inv.isSuccess = isSuccess
	}
}

// WithMinErrorCode treats every status at or above code as a failure.
func WithMinErrorCode(code int) InvokerOption {
	return WithSuccessPredicate(MinErrorCode(code))
}

// WithErrorDecorator sets the function that builds errors for failed responses.
func WithErrorDecorator(decorator ErrorDecorator) InvokerOption {
	return func(inv *Invoker) {
		inv.errorDecorator = decorator
	}
}

// WithUserAgent sets the User-Agent for requests that do not carry one.
func WithUserAgent(userAgent string) InvokerOption {
	return func(inv *Invoker) {
		inv.userAgent = userAgent
	}
}

// NewInvoker creates an Invoker. Without options it uses a client from
// NewHttpClientBuilder and fails every status >= DefaultMinErrorCode.
func NewInvoker(opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		isSuccess: MinErrorCode(DefaultMinErrorCode),
	}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.client == nil {
		inv.client = NewHttpClientBuilder().Build()
	}
	return inv
}

// DebugLog returns the attached debug log, or nil.
func (inv *Invoker) DebugLog() *DebugLog {
	return inv.debugLog
}

// LogRequest records req in the debug log. It does nothing when debugging is off.
func (inv *Invoker) LogRequest(req *Request) error {
	if inv.debugLog == nil {
		return nil
	}
	return inv.debugLog.LogRequest(req)
}

// LogResponse records resp in the debug log. It does nothing when debugging is off.
func (inv *Invoker) LogResponse(resp *Response) error {
	if inv.debugLog == nil {
		return nil
	}
	return inv.debugLog.LogResponse(resp)
}

// Invoke sends req and waits for the complete response body.
//
// Network failures are returned unchanged. A response that fails the status
// classifier is returned as the decorator's error, or a *ResponseError.
func (inv *Invoker) Invoke(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.NewInvalidArgumentError("request is required", nil)
	}

	if inv.logExchanges {
		if err := inv.LogRequest(req); err != nil {
			return nil, err
		}
	}

	httpReq, target, err := inv.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := inv.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    HeadersFromHTTP(httpResp.Header),
		Body:       string(body),
	}
	logger.Debugw("invoked request",
		"method", httpReq.Method,
		"url", target.Redacted(),
		"status", resp.StatusCode)

	if inv.logExchanges {
		if err := inv.LogResponse(resp); err != nil {
			return nil, err
		}
	}

	if inv.isSuccess(resp.StatusCode) {
		return resp, nil
	}
	return nil, inv.classifyFailure(req, resp)
}

func (inv *Invoker) classifyFailure(req *Request, resp *Response) error {
	if inv.errorDecorator != nil {
		if err := inv.errorDecorator(req, resp); err != nil {
			return err
		}
	}
	return NewResponseError(resp)
}

// newHTTPRequest turns req into an *http.Request. Credentials embedded in the
// URL become basic auth unless the caller set Authorization explicitly.
func (inv *Invoker) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, *url.URL, error) {
	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, nil, errors.NewInvalidArgumentError(fmt.Sprintf("the supplied URL %s is malformed", req.URL), err)
	}
	switch target.Scheme {
	case "http", "https":
	default:
		return nil, nil, errors.NewInvalidArgumentError(
			fmt.Sprintf("the supplied URL %s must use the http or https scheme", target.Redacted()), nil)
	}
	if target.Host == "" {
		return nil, nil, errors.NewInvalidArgumentError(
			fmt.Sprintf("the supplied URL %s has no host", target.Redacted()), nil)
	}

	user := target.User
	endpoint := *target
	endpoint.User = nil

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, nil, errors.NewInvalidArgumentError("failed to create request", err)
	}

	httpReq.Header = req.Headers.toHTTP()
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
		httpReq.Header.Del("Host")
	}
	if user != nil && !req.Headers.Has("Authorization") {
		password, _ := user.Password()
		httpReq.SetBasicAuth(user.Username(), password)
	}
	if inv.userAgent != "" && !req.Headers.Has("User-Agent") {
		httpReq.Header.Set("User-Agent", inv.userAgent)
	}

	return httpReq, target, nil
}
