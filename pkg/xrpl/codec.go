package xrpl

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash prefixes of the XRPL binary format.
var (
	prefixTxSign = []byte{0x53, 0x54, 0x58, 0x00} // "STX\0"
	prefixTxID   = []byte{0x54, 0x58, 0x4E, 0x00} // "TXN\0"
)

const (
	txTypeNFTokenMint uint16 = 25

	// TfTransferable lets the token be transferred to accounts other than
	// the issuer.
	TfTransferable uint32 = 0x00000008

	// MaxURILength is the largest URI the ledger accepts on NFTokenMint.
	MaxURILength = 256

	maxDrops   uint64 = 100_000_000_000_000_000
	maxVLBytes        = 918744
)

// Type codes used by the NFTokenMint field set.
const (
	typeUInt16    = 1
	typeUInt32    = 2
	typeAmount    = 6
	typeBlob      = 7
	typeAccountID = 8
)

// mintFields is an NFTokenMint transaction ready for serialization.
type mintFields struct {
	Account            []byte
	Flags              uint32
	Sequence           uint32
	LastLedgerSequence uint32
	Taxon              uint32
	Fee                uint64
	URI                []byte
	SigningPubKey      []byte
	TxnSignature       []byte
}

type fieldWriter struct {
	buf bytes.Buffer
	err error
}

// header writes a field id. Both codes below 16 fit in one byte; larger
// codes spill into following bytes.
func (w *fieldWriter) header(typeCode, fieldCode int) {
	switch {
	case typeCode < 16 && fieldCode < 16:
		w.buf.WriteByte(byte(typeCode<<4 | fieldCode))
	case typeCode < 16:
		w.buf.WriteByte(byte(typeCode << 4))
		w.buf.WriteByte(byte(fieldCode))
	case fieldCode < 16:
		w.buf.WriteByte(byte(fieldCode))
		w.buf.WriteByte(byte(typeCode))
	default:
		w.buf.WriteByte(0)
		w.buf.WriteByte(byte(typeCode))
		w.buf.WriteByte(byte(fieldCode))
	}
}

func (w *fieldWriter) uint16(fieldCode int, value uint16) {
	w.header(typeUInt16, fieldCode)
	var raw [2]byte
	binary.BigEndian.PutUint16(raw[:], value)
	w.buf.Write(raw[:])
}

func (w *fieldWriter) uint32(fieldCode int, value uint32) {
	w.header(typeUInt32, fieldCode)
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], value)
	w.buf.Write(raw[:])
}

// drops writes a native XRP amount.
func (w *fieldWriter) drops(fieldCode int, value uint64) {
	if value > maxDrops {
		w.fail(fmt.Errorf("amount %d drops exceeds the maximum", value))
		return
	}
	w.header(typeAmount, fieldCode)
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], 0x4000000000000000|value)
	w.buf.Write(raw[:])
}

func (w *fieldWriter) blob(typeCode, fieldCode int, value []byte) {
	prefix, err := encodeVL(len(value))
	if err != nil {
		w.fail(err)
		return
	}
	w.header(typeCode, fieldCode)
	w.buf.Write(prefix)
	w.buf.Write(value)
}

func (w *fieldWriter) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// encodeVL returns the variable-length prefix for a field of n bytes.
func encodeVL(n int) ([]byte, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("negative length %d", n)
	case n <= 192:
		return []byte{byte(n)}, nil
	case n <= 12480:
		n -= 193
		return []byte{byte(193 + (n >> 8)), byte(n & 0xff)}, nil
	case n <= maxVLBytes:
		n -= 12481
		return []byte{byte(241 + (n >> 16)), byte((n >> 8) & 0xff), byte(n & 0xff)}, nil
	default:
		return nil, fmt.Errorf("length %d exceeds the variable-length maximum", n)
	}
}

// serialize writes the canonical binary form: fields sorted by type code,
// then field code. The signature is omitted when withSignature is false,
// which yields the bytes that get signed.
func (f mintFields) serialize(withSignature bool) ([]byte, error) {
	if len(f.Account) != 20 {
		return nil, fmt.Errorf("account id must be 20 bytes, got %d", len(f.Account))
	}

	var w fieldWriter
	w.uint16(2, txTypeNFTokenMint) // TransactionType
	w.uint32(2, f.Flags)           // Flags
	w.uint32(4, f.Sequence)        // Sequence
	if f.LastLedgerSequence > 0 {
		w.uint32(27, f.LastLedgerSequence)
	}
	w.uint32(42, f.Taxon) // NFTokenTaxon
	w.drops(8, f.Fee)     // Fee
	w.blob(typeBlob, 3, f.SigningPubKey)
	if withSignature {
		w.blob(typeBlob, 4, f.TxnSignature)
	}
	if len(f.URI) > 0 {
		w.blob(typeBlob, 5, f.URI)
	}
	w.blob(typeAccountID, 1, f.Account)

	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// signingPayload is the message a signer signs: the signing prefix followed
// by the transaction without its signature.
func (f mintFields) signingPayload() ([]byte, error) {
	unsigned, err := f.serialize(false)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(nil), prefixTxSign...), unsigned...), nil
}

// sha512Half returns the first 32 bytes of SHA-512.
func sha512Half(data ...[]byte) []byte {
	hasher := sha512.New()
	for _, chunk := range data {
		hasher.Write(chunk)
	}
	return hasher.Sum(nil)[:32]
}

// TransactionHash returns the identifying hash of a signed transaction blob.
func TransactionHash(blob []byte) string {
	return strings.ToUpper(hex.EncodeToString(sha512Half(prefixTxID, blob)))
}
