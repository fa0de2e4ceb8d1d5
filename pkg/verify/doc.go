// Package verify checks that a minted token's on-chain payload still carries
// an expected content hash.
package verify
