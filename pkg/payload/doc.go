// Package payload encodes and decodes the record embedded in a paper token:
// the content hash of the paper plus its title, authors and mint timestamp.
//
// The wire form is a compact JSON object with fixed key order:
//
//	{"h":"<hex digest>","t":"<title>","a":"<authors>","ts":"2026-01-02T03:04:05.006Z"}
//
// Ledgers that store token content as a hex blob (the XRPL URI field) carry
// the upper-case hex of those bytes; see EncodeHex and DecodeHex.
//
// Decode(Encode(r)) == r for every Record built with NewRecord.
package payload
