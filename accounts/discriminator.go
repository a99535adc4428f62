package accounts

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
	"github.com/mr-tron/base58"
)

// DiscriminatorSize is the length of the prefix written before every payload.
const DiscriminatorSize = 8

const namespace = "account:"

// Discriminator is the 8-byte type tag at the start of an encoded account.
type Discriminator [DiscriminatorSize]byte

// NewDiscriminator returns sha256("account:" + name)[:8].
func NewDiscriminator(name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// String returns the lower-case hex form.
func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

// Base58 returns the form RPC memcmp filters expect.
func (d Discriminator) Base58() string {
	return base58.Encode(d[:])
}

// Matches reports whether data starts with d.
func (d Discriminator) Matches(data []byte) bool {
	if len(data) < DiscriminatorSize {
		return false
	}
	return Discriminator(data[:DiscriminatorSize]) == d
}
