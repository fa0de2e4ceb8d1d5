// Package hts is a Hedera Token Service backend for the minting engine.
//
// Papers are minted as serials of one pre-created NFT collection. The
// payload becomes the serial's metadata, so it must fit in 100 bytes. Token
// identifiers have the form serial@tokenID, for example 42@0.0.5005.
// Finalized mints are reported as a created token page so the resolver
// treats both ledgers the same way. Reads go through the mirror node.
package hts
