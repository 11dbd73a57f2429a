package api

import (
	"encoding/json"
)

// Request is an abstract dispatch request. Body carries the raw JSON write
// body for mutating operations; Query carries list filters.
type Request struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query,omitempty"`
	Body   json.RawMessage   `json:"body,omitempty"`
}

// Meta describes the pagination envelope attached to collection responses
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Response is a successful dispatch result. Data holds the entity or
// collection payload; Meta is present on collection responses only.
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

const defaultPerPage = 50

// ok wraps a single entity payload
func ok(data interface{}) *Response {
	return &Response{Data: data}
}

// list wraps a collection payload with its pagination envelope. Collections
// are returned whole; the envelope reports totals without windowing. An
// empty collection has zero pages.
func list(data interface{}, total, perPage int) *Response {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	pages := (total + perPage - 1) / perPage
	return &Response{
		Data: data,
		Meta: &Meta{Page: 1, PerPage: perPage, Total: total, TotalPages: pages},
	}
}
