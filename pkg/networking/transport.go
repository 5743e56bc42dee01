// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// InvokeFunc has the signature of Invoker.Invoke.
type InvokeFunc func(ctx context.Context, req *Request) (*Response, error)

// invokeTransport lets net/http based libraries send their requests through
// an InvokeFunc.
type invokeTransport struct {
	invoke InvokeFunc
}

// NewInvokeTransport returns an http.RoundTripper backed by invoke. Status
// classification still applies, so a failing status surfaces as the error
// returned from RoundTrip rather than as a response.
func NewInvokeTransport(invoke InvokeFunc) http.RoundTripper {
	return &invokeTransport{invoke: invoke}
}

// RoundTrip implements http.RoundTripper.
func (t *invokeTransport) RoundTrip(httpReq *http.Request) (*http.Response, error) {
	req, err := RequestFromHTTP(httpReq)
	if err != nil {
		return nil, err
	}
	resp, err := t.invoke(httpReq.Context(), req)
	if err != nil {
		return nil, err
	}
	return resp.ToHTTP(httpReq), nil
}

// RequestFromHTTP converts an *http.Request, consuming and closing its body.
func RequestFromHTTP(httpReq *http.Request) (*Request, error) {
	req := &Request{
		Method: httpReq.Method,
		URL:    httpReq.URL.String(),
	}

	keys := make([]string, 0, len(httpReq.Header))
	for key := range httpReq.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range httpReq.Header[key] {
			req.Headers = append(req.Headers, Header{Key: key, Value: value})
		}
	}

	if httpReq.Body != nil {
		defer func() { _ = httpReq.Body.Close() }()
		body, err := io.ReadAll(httpReq.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		req.Body = string(body)
	}
	return req, nil
}

// ToHTTP converts the response for consumers that expect *http.Response.
// Header names are canonicalised on the way out.
func (r *Response) ToHTTP(httpReq *http.Request) *http.Response {
	header := make(http.Header, len(r.Headers))
	for _, h := range r.Headers {
		header.Add(h.Key, h.Value)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)),
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       httpReq,
	}
}
