// Package fetch is the HTTP client shared by every ATS adapter.
//
// Requests are rate limited per host (golang.org/x/time/rate), retried with a
// linear backoff on 429, 5xx and transport errors, and capped in size.
// GetJSON and GetDocument layer JSON decoding and goquery parsing on top of
// Get, so adapters never touch net/http directly.
package fetch
