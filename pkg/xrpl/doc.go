// Package xrpl implements ledger.Client over the XRP Ledger JSON-RPC API.
//
// Transactions are serialized and signed locally: the package carries the
// binary codec for the NFTokenMint field set, secp256k1 signing and classic
// address encoding. Finality is observed by polling the tx method until the
// transaction is in a validated ledger or its LastLedgerSequence has passed.
package xrpl
