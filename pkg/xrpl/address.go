package xrpl

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

const xrplAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var (
	ErrInvalidBase58Character = errors.New("invalid base58 character")
	ErrInvalidChecksum        = errors.New("invalid base58 checksum")
	ErrInvalidAddress         = errors.New("invalid classic address")
)

var (
	accountIDVersion  = []byte{0x00}
	familySeedVersion = []byte{0x21}
)

func base58Encode(input []byte) string {
	if len(input) == 0 {
		return ""
	}

	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}

	digits := []int{0}
	for index := zeros; index < len(input); index++ {
		carry := int(input[index])
		for digitIndex := 0; digitIndex < len(digits); digitIndex++ {
			value := (digits[digitIndex] << 8) + carry
			digits[digitIndex] = value % 58
			carry = value / 58
		}
		for carry > 0 {
			digits = append(digits, carry%58)
			carry /= 58
		}
	}

	var output strings.Builder
	output.WriteString(strings.Repeat(string(xrplAlphabet[0]), zeros))
	if zeros == len(input) {
		return output.String()
	}
	for index := len(digits) - 1; index >= 0; index-- {
		output.WriteByte(xrplAlphabet[digits[index]])
	}
	return output.String()
}

func base58Decode(input string) ([]byte, error) {
	if len(input) == 0 {
		return []byte{}, nil
	}

	zeros := 0
	for zeros < len(input) && input[zeros] == xrplAlphabet[0] {
		zeros++
	}

	output := make([]int, 0, len(input))
	for index := zeros; index < len(input); index++ {
		value := strings.IndexByte(xrplAlphabet, input[index])
		if value < 0 {
			return nil, ErrInvalidBase58Character
		}

		carry := value
		for outputIndex := 0; outputIndex < len(output); outputIndex++ {
			x := output[outputIndex]*58 + carry
			output[outputIndex] = x & 0xff
			carry = x >> 8
		}
		for carry > 0 {
			output = append(output, carry&0xff)
			carry >>= 8
		}
	}

	decoded := make([]byte, zeros+len(output))
	for index := range output {
		decoded[len(decoded)-1-index] = byte(output[index])
	}
	return decoded, nil
}

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func encodeCheck(version []byte, payload []byte) string {
	data := make([]byte, 0, len(version)+len(payload)+4)
	data = append(data, version...)
	data = append(data, payload...)
	data = append(data, checksum(data)...)
	return base58Encode(data)
}

// decodeCheck verifies the checksum and version prefix and returns the
// payload.
func decodeCheck(value string, version []byte, payloadLength int) ([]byte, error) {
	raw, err := base58Decode(value)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(version)+payloadLength+4 {
		return nil, fmt.Errorf("unexpected decoded length %d", len(raw))
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, ErrInvalidChecksum
	}
	if !bytes.Equal(body[:len(version)], version) {
		return nil, fmt.Errorf("unexpected version prefix %X", body[:len(version)])
	}
	return body[len(version):], nil
}

// AccountIDFromPublicKey returns RIPEMD-160(SHA-256(publicKey)).
func AccountIDFromPublicKey(publicKey []byte) []byte {
	sum := sha256.Sum256(publicKey)
	hasher := ripemd160.New()
	hasher.Write(sum[:])
	return hasher.Sum(nil)
}

// EncodeAddress returns the classic address of a 20-byte account id.
func EncodeAddress(accountID []byte) (string, error) {
	if len(accountID) != 20 {
		return "", fmt.Errorf("%w: account id must be 20 bytes, got %d", ErrInvalidAddress, len(accountID))
	}
	return encodeCheck(accountIDVersion, accountID), nil
}

// DecodeAddress returns the account id of a classic address.
func DecodeAddress(address string) ([]byte, error) {
	trimmed := strings.TrimSpace(address)
	if !strings.HasPrefix(trimmed, "r") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	accountID, err := decodeCheck(trimmed, accountIDVersion, 20)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, address, err)
	}
	return accountID, nil
}

// AddressFromPublicKey derives the classic address of a public key.
func AddressFromPublicKey(publicKey []byte) string {
	address, _ := EncodeAddress(AccountIDFromPublicKey(publicKey))
	return address
}

// IsValidAddress reports whether address is a well-formed classic address.
func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}
