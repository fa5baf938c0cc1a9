// Package utils provides small conversion helpers for loosely typed data.
//
// ATS APIs return JSON whose field types drift between tenants (ids as numbers
// or strings, counts as strings). The helpers here coerce decoded values
// without failing, and FirstString walks a list of candidate keys the way the
// adapters need.
package utils
