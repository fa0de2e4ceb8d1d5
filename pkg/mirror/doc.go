// Package mirror is a small Hedera mirror node REST client. It reads the NFT
// and transaction state the HTS backend needs to look tokens up and to
// re-read finalized mints.
package mirror
