// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// chainID is an arbitrary number added to the recovery id of every signature
// so it's clear the signature was produced for this blockchain. Ethereum and
// Bitcoin do this as well, but they use the value of 27.
const chainID = 29

// hashLength is the number of hex characters in a SHA-256 hash.
const hashLength = 64

// =============================================================================

// Hash returns a content hash for the specified values. Each value is
// serialized to JSON, which fixes struct field order, sorts map keys and
// tags strings apart from numbers. The encodings are then sorted so the
// order of the arguments does not affect the result. An empty string is
// returned if any value can't be serialized.
func Hash(values ...any) string {
	encoded := make([]string, len(values))
	for i, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		encoded[i] = string(data)
	}

	sort.Strings(encoded)

	hash := sha256.Sum256([]byte(strings.Join(encoded, " ")))
	return hex.EncodeToString(hash[:])
}

// LeadingZeroBits returns the number of leading zero bits in the binary
// representation of the hex encoded hash.
func LeadingZeroBits(hash string) int {
	data, err := hex.DecodeString(hash)
	if err != nil {
		return 0
	}

	var zeros int
	for _, b := range data {
		if b == 0 {
			zeros += 8
			continue
		}

		for i := 7; i >= 0; i-- {
			if b>>i != 0 {
				return zeros
			}
			zeros++
		}
	}

	return zeros
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The hash needs at least difficulty leading zero bits.
func IsHashSolved(difficulty uint, hash string) bool {
	if len(hash) != hashLength {
		return false
	}

	return LeadingZeroBits(hash) >= int(difficulty)
}

// =============================================================================

// PublicKeyToAddress converts the public key into the address format used
// on the blockchain, the hex encoded uncompressed public key.
func PublicKeyToAddress(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&pk))
}

// Sign uses the specified private key to sign the content hash of the value.
// The signature is returned hex encoded in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Check the public key extracted from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	// Embed the chain id into the recovery id.
	sig[crypto.RecoveryIDOffset] += chainID

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced by the private key belonging to
// the address over the content hash of the value.
func Verify(value any, address string, sigStr string) error {
	pubBytes, err := hexutil.Decode(address)
	if err != nil {
		return fmt.Errorf("decoding address: %w", err)
	}

	if _, err := crypto.UnmarshalPubkey(pubBytes); err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	v, r, s, err := ToVRSFromHexSignature(sigStr)
	if err != nil {
		return err
	}

	// Check the recovery id is either 0 or 1.
	uintV := v.Uint64() - chainID
	if uintV != 0 && uintV != 1 {
		return errors.New("invalid recovery id")
	}

	// Check the signature values are valid.
	if !crypto.ValidateSignatureValues(byte(uintV), r, s, false) {
		return errors.New("invalid signature values")
	}

	data, err := stamp(value)
	if err != nil {
		return err
	}

	sig := ToSignatureBytes(v, r, s)
	if !crypto.VerifySignature(pubBytes, data, sig[:crypto.RecoveryIDOffset]) {
		return errors.New("signature does not match address")
	}

	return nil
}

// ToVRSFromHexSignature converts a hex representation of the signature into
// its R, S and V parts.
func ToVRSFromHexSignature(sigStr string) (v, r, s *big.Int, err error) {
	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decoding signature: %w", err)
	}

	if len(sig) != crypto.SignatureLength {
		return nil, nil, nil, fmt.Errorf("invalid signature length %d", len(sig))
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64]})

	return v, r, s, nil
}

// ToSignatureBytes converts the r, s, v values into a slice of bytes
// with the removal of the chain id.
func ToSignatureBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)

	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[64] = byte(v.Uint64() - chainID)

	return sig
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the content hash of the
// value with the chain stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {
	contentHash := Hash(value)
	if contentHash == "" {
		return nil, errors.New("unable to hash value")
	}

	// This stamp is used so signatures we produce when signing data
	// are always unique to this blockchain.
	stamp := []byte("\x19Cryptochain Signed Message:\n32")

	return crypto.Keccak256(stamp, []byte(contentHash)), nil
}
