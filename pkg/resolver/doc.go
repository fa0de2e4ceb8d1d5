// Package resolver recovers the identifier of a newly minted token from the
// state diff of a finalized mint transaction.
package resolver
