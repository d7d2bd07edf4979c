// Package server exposes the engagement ledger over HTTP using Echo.
//
// Handlers translate wire input into ledger service calls and map domain
// sentinel errors onto the structured error taxonomy; the error
// middleware turns those into JSON responses with the right status code.
package server
