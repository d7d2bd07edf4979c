// Package domain contains the model types, repository contracts, and
// sentinel errors of the engagement ledger. It has no dependencies on
// storage or transport; those layers implement the interfaces defined here.
package domain
