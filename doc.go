// Paper NFT for Go records the content hash of an academic paper in a
// non-fungible token and checks it later. It mints the token, recovers the
// token identifier from the finalized transaction's state diff, and verifies
// a token's payload against a paper's current hash.
//
// # Packages
//
//   - payload: the on-chain metadata record (content hash, title, authors,
//     timestamp) and its compact JSON wire form
//   - mint: transaction builder and the per-account submission pipeline
//   - resolver: token identifier recovery from a state diff
//   - verify: single and batched content-hash verification
//   - paper: the boundary with a paper store (status and token fields)
//   - journal, reconcile: durable mint attempts and after-the-fact settlement
//   - fingerprint: SHA-256 digest and CIDv1 of a paper file
//   - xrpl: XRP Ledger JSON-RPC backend (NFTokenMint)
//   - hts: Hedera Token Service backend, reading through mirror
//
// # Command line
//
// cmd/paperminter wraps the packages in a CLI with mint, verify, resolve,
// reconcile and fingerprint commands.
//
// # Installation
//
//	go get github.com/scholarled/paper-nft-go@latest
package papernft
