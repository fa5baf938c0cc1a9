// Package ats defines the contract between the crawler and the per-ATS adapters.
//
// # Adapters
//
// An Adapter fetches the raw records of one careers site and maps each one
// to a reconcile.NormalizedJob. Fallback chains (endpoint discovery, id
// derivation, field aliases) live inside the adapter; the engine only sees
// the normalized batch. The concrete adapters are in the subpackages:
//
//	darwinbox  /ms/candidateapi/job paged by page/limit
//	keka       /careers/api/embedjobs/default/active/{guid}, override or discovered
//	join       server-rendered company page parsed with goquery
//	oracle     hcmRestApi recruitingCEJobRequisitions with the findReqs finder
//
// Records without a natural identifier get FallbackID, an MD5 of fields
// that are stable in practice. Such ids change when those fields change.
//
// # Errors
//
//	ErrInvalidSource      missing ats/company or a careers_url that is not absolute http(s)
//	ErrUnexpectedPayload  the upstream answered with an unknown shape
//	ErrEndpointNotFound   no jobs endpoint could be discovered
//	ErrUnknownAdapter     Registry.Get on an unregistered name
//
// Transport failures surface as *fetch.StatusError or the underlying net error.
package ats
