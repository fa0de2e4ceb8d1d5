package payload

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scholarled/paper-nft-go/pkg/fingerprint"
)

// TimestampLayout is RFC 3339 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrMalformed matches every *MalformedError.
var ErrMalformed = errors.New("malformed token payload")

// MalformedError reports why a payload could not be decoded.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformed.Error(), e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// Record is the content of a paper token.
type Record struct {
	ContentHash string
	Title       string
	Authors     string
	Timestamp   time.Time
}

type wireRecord struct {
	Hash      string `json:"h"`
	Title     string `json:"t"`
	Authors   string `json:"a"`
	Timestamp string `json:"ts,omitempty"`
}

// NewRecord validates the content hash and normalizes the timestamp to UTC
// with millisecond precision, the resolution the wire form carries.
func NewRecord(contentHash, title, authors string, timestamp time.Time) (Record, error) {
	hash, err := fingerprint.ValidateHex(contentHash)
	if err != nil {
		return Record{}, err
	}
	if !utf8.ValidString(title) || !utf8.ValidString(authors) {
		return Record{}, fmt.Errorf("title and authors must be valid UTF-8")
	}
	if err := checkTimestamp(timestamp); err != nil {
		return Record{}, err
	}
	return Record{
		ContentHash: hash,
		Title:       title,
		Authors:     authors,
		Timestamp:   NormalizeTimestamp(timestamp),
	}, nil
}

// NormalizeTimestamp converts t to UTC, truncates it to milliseconds and drops
// the monotonic clock reading. The zero time stays zero.
func NormalizeTimestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond).Round(0)
}

// checkTimestamp rejects times whose UTC year has no four-digit RFC 3339 form.
func checkTimestamp(t time.Time) error {
	if t.IsZero() {
		return nil
	}
	if year := t.UTC().Year(); year < 0 || year > 9999 {
		return fmt.Errorf("timestamp year %d is outside 0000-9999", year)
	}
	return nil
}

// Encode serializes r.
func Encode(r Record) ([]byte, error) {
	if strings.TrimSpace(r.ContentHash) == "" {
		return nil, fmt.Errorf("content hash is required")
	}
	if err := checkTimestamp(r.Timestamp); err != nil {
		return nil, err
	}

	wire := wireRecord{
		Hash:    r.ContentHash,
		Title:   r.Title,
		Authors: r.Authors,
	}
	if !r.Timestamp.IsZero() {
		wire.Timestamp = r.Timestamp.UTC().Format(TimestampLayout)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(wire); err != nil {
		return nil, fmt.Errorf("failed to encode token payload: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a payload produced by Encode.
func Decode(data []byte) (Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Record{}, malformed("payload is empty")
	}
	if trimmed[0] != '{' {
		return Record{}, malformed("payload is not a structured record")
	}

	var wire wireRecord
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Record{}, malformed("invalid JSON: %v", err)
	}
	if strings.TrimSpace(wire.Hash) == "" {
		return Record{}, malformed("content hash field is missing")
	}

	record := Record{
		ContentHash: wire.Hash,
		Title:       wire.Title,
		Authors:     wire.Authors,
	}
	if wire.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, wire.Timestamp)
		if err != nil {
			return Record{}, malformed("invalid timestamp %q", wire.Timestamp)
		}
		record.Timestamp = parsed.UTC()
	}
	return record, nil
}

// EncodeHex returns the upper-case hex form of Encode(r).
func EncodeHex(r Record) (string, error) {
	encoded, err := Encode(r)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(encoded)), nil
}

// DecodeHex decodes the hex form produced by EncodeHex.
func DecodeHex(value string) (Record, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return Record{}, malformed("payload is not hex: %v", err)
	}
	return Decode(raw)
}

// SameHash compares two hex digests byte-for-byte after hex decoding, so
// case differences do not matter but any digest difference does.
func SameHash(expected, found string) bool {
	left, leftErr := hex.DecodeString(strings.TrimSpace(expected))
	right, rightErr := hex.DecodeString(strings.TrimSpace(found))
	if leftErr != nil || rightErr != nil {
		return strings.TrimSpace(expected) == strings.TrimSpace(found)
	}
	return bytes.Equal(left, right)
}
