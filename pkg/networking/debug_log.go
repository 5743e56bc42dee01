// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stacklok/skillctl/pkg/errors"
)

const (
	// RequestLabel precedes every request snapshot in a DebugLog.
	RequestLabel = "REQUEST:"
	// ResponseLabel precedes every response snapshot in a DebugLog.
	ResponseLabel = "RESPONSE:"
)

// DebugLog accumulates request and response snapshots for the lifetime of its
// owner. Lines are kept in insertion order and written out once by Flush.
type DebugLog struct {
	mu      sync.Mutex
	lines   []string
	flushed bool
}

// NewDebugLog returns an empty DebugLog.
func NewDebugLog() *DebugLog {
	return &DebugLog{}
}

// Append adds lines to the log. Lines passed in one call stay adjacent.
func (l *DebugLog) Append(lines ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, lines...)
}

// Lines returns a copy of the accumulated lines.
func (l *DebugLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Flush writes every line to w, each followed by a newline. Only the first
// call writes anything.
func (l *DebugLog) Flush(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.flushed {
		return nil
	}
	l.flushed = true

	for _, line := range l.lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to flush debug log: %w", err)
		}
	}
	return nil
}

type requestSnapshot struct {
	Body    any    `json:"body,omitempty"`
	Headers string `json:"headers"`
	URL     string `json:"url"`
	Method  string `json:"method"`
}

type responseSnapshot struct {
	Body       any     `json:"body,omitempty"`
	Headers    string  `json:"headers"`
	StatusCode int     `json:"statusCode"`
	RequestID  *string `json:"request-id"`
}

// LogRequest records the REQUEST label followed by a snapshot of req.
func (l *DebugLog) LogRequest(req *Request) error {
	headers, err := flattenHeaders(req.Headers)
	if err != nil {
		return err
	}
	snapshot, err := encodeSnapshot(requestSnapshot{
		Body:    snapshotBody(req.Body),
		Headers: headers,
		URL:     req.URL,
		Method:  req.Method,
	})
	if err != nil {
		return err
	}
	l.Append(RequestLabel, snapshot)
	return nil
}

// LogResponse records the RESPONSE label followed by a snapshot of resp,
// including the correlation id when the service returned one.
func (l *DebugLog) LogResponse(resp *Response) error {
	headers, err := flattenHeaders(resp.Headers)
	if err != nil {
		return err
	}
	var requestID *string
	if id, ok := resp.Headers.Get(RequestIDHeader); ok {
		requestID = &id
	}
	snapshot, err := encodeSnapshot(responseSnapshot{
		Body:       snapshotBody(resp.Body),
		Headers:    headers,
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
	})
	if err != nil {
		return err
	}
	l.Append(ResponseLabel, snapshot)
	return nil
}

// flattenHeaders renders headers as a compact JSON object with one value per
// key. Repeated keys are joined with ", ".
func flattenHeaders(headers Headers) (string, error) {
	flat := orderedmap.New[string, string]()
	for _, header := range headers {
		if existing, ok := flat.Get(header.Key); ok {
			flat.Set(header.Key, existing+", "+header.Value)
			continue
		}
		flat.Set(header.Key, header.Value)
	}

	raw, err := flat.MarshalJSON()
	if err != nil {
		return "", errors.NewInternalError("failed to serialize headers", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return "", errors.NewInternalError("failed to serialize headers", err)
	}
	return compact.String(), nil
}

// snapshotBody embeds JSON bodies as-is and everything else as a string.
func snapshotBody(body string) any {
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

func encodeSnapshot(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", errors.NewInternalError("failed to serialize debug snapshot", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
