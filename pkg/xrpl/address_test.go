package xrpl

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

const (
	genesisSeed      = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
	genesisAddress   = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	genesisPublicKey = "0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020"
	genesisPrivate   = "1ACAAEDECE405B2A958212629E16F2EB46B153EEE94CDD350FDEFF52795525B7"
	genesisAccountID = "B5F762798A53D543A014CAF8B297CFF8F2F937E8"
)

func TestAddressFromPublicKey(t *testing.T) {
	publicKey, _ := hex.DecodeString(genesisPublicKey)
	if got := AddressFromPublicKey(publicKey); got != genesisAddress {
		t.Fatalf("expected %s, got %s", genesisAddress, got)
	}
}

func TestDecodeAddress(t *testing.T) {
	accountID, err := DecodeAddress(genesisAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected, _ := hex.DecodeString(genesisAccountID)
	if !bytes.Equal(accountID, expected) {
		t.Fatalf("expected %X, got %X", expected, accountID)
	}

	encoded, err := EncodeAddress(accountID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded != genesisAddress {
		t.Fatalf("round trip failed: %s", encoded)
	}
}

func TestDecodeAddressRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"xHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTj",
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdty0h",
		"rrrr",
	}
	for _, address := range cases {
		if _, err := DecodeAddress(address); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("%q: expected ErrInvalidAddress, got %v", address, err)
		}
		if IsValidAddress(address) {
			t.Fatalf("%q: expected invalid", address)
		}
	}
}

func TestEncodeAddressRequiresTwentyBytes(t *testing.T) {
	if _, err := EncodeAddress([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestBase58RoundTrip(t *testing.T) {
	inputs := [][]byte{
		{0},
		{0, 0, 1},
		{0xff, 0xee, 0x01},
		bytes.Repeat([]byte{0xab}, 25),
	}
	for _, input := range inputs {
		decoded, err := base58Decode(base58Encode(input))
		if err != nil {
			t.Fatalf("%X: unexpected error: %v", input, err)
		}
		if !bytes.Equal(decoded, input) {
			t.Fatalf("round trip mismatch: %X vs %X", input, decoded)
		}
	}
	if _, err := base58Decode("r0"); !errors.Is(err, ErrInvalidBase58Character) {
		t.Fatalf("expected ErrInvalidBase58Character, got %v", err)
	}
}
