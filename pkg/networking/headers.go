// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"net/http"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RequestIDHeader is the response header carrying the service correlation id.
// Response header names are lower-cased on receipt, so the lookup is exact.
const RequestIDHeader = "x-amzn-requestid"

// Header is a single header name/value pair.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Headers is an ordered list of header pairs. A key may appear more than once.
type Headers []Header

// HeaderMap is the multi-valued mapping form of Headers. Keys keep the order in
// which they were first seen.
type HeaderMap = orderedmap.OrderedMap[string, []string]

// Get returns the first value stored under exactly key.
func (h Headers) Get(key string) (string, bool) {
	for _, header := range h {
		if header.Key == key {
			return header.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under exactly key, in order.
func (h Headers) Values(key string) []string {
	var values []string
	for _, header := range h {
		if header.Key == key {
			values = append(values, header.Value)
		}
	}
	return values
}

// Has reports whether a header named key exists, ignoring case.
func (h Headers) Has(key string) bool {
	for _, header := range h {
		if strings.EqualFold(header.Key, key) {
			return true
		}
	}
	return false
}

// ToMap groups the pairs by key. Repeated keys collect their values in order.
func (h Headers) ToMap() *HeaderMap {
	m := orderedmap.New[string, []string]()
	for _, header := range h {
		values, _ := m.Get(header.Key)
		m.Set(header.Key, append(values, header.Value))
	}
	return m
}

// HeadersFromMap fans a mapping out into pairs, one pair per value.
func HeadersFromMap(m *HeaderMap) Headers {
	if m == nil {
		return nil
	}
	headers := make(Headers, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		for _, value := range pair.Value {
			headers = append(headers, Header{Key: pair.Key, Value: value})
		}
	}
	return headers
}

// HeadersFromHTTP converts received header fields into pairs. Names are
// lower-cased and sorted so the result does not depend on map iteration.
func HeadersFromHTTP(h http.Header) Headers {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	headers := make(Headers, 0, len(keys))
	for _, key := range keys {
		name := strings.ToLower(key)
		for _, value := range h[key] {
			headers = append(headers, Header{Key: name, Value: value})
		}
	}
	return headers
}

// transportHeaders are the fields net/http writes itself and only recognises
// under their canonical names.
var transportHeaders = map[string]bool{
	"Host":              true,
	"User-Agent":        true,
	"Content-Length":    true,
	"Transfer-Encoding": true,
}

// toHTTP builds the outgoing header fields. Keys are stored verbatim so the
// service sees the names the caller chose, except for transportHeaders,
// which are canonicalised and merged.
func (h Headers) toHTTP() http.Header {
	out := make(http.Header, len(h))
	for pair := h.ToMap().Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		if canonical := http.CanonicalHeaderKey(key); transportHeaders[canonical] {
			key = canonical
		}
		out[key] = append(out[key], pair.Value...)
	}
	return out
}
