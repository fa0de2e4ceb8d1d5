// Package ledger defines the capability a ledger backend provides to the
// mint, resolve and verify engine, together with the data the backend hands
// back: finalized state diffs and token records.
//
// A Client is constructed once by the caller and passed explicitly to every
// operation. Its lifecycle (Connect, Close) belongs to the caller.
package ledger
