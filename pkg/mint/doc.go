// Package mint builds paper token mint transactions, submits them through a
// ledger client and classifies the outcome.
//
// Submissions for the same account are serialized because the ledger
// requires strictly increasing per-account sequence numbers. A mint that
// succeeded on-chain but whose token id could not be recovered is reported as
// unresolved and is never retried, since a retry would mint a duplicate.
package mint
