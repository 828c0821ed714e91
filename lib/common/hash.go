package common

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/argon2"
)

var HashSalt = []byte("curatenet")

func MakeHash(b []byte) []byte {
	return argon2.Key(b, HashSalt, 3, 32*1024, 4, 32)
}

func MakeObjectHash(i interface{}) (b []byte, err error) {
	var e []byte
	if e, err = rlp.EncodeToBytes(i); err != nil {
		return
	}

	b = MakeHash(e)

	return
}

func MustMakeObjectHash(i interface{}) (b []byte) {
	b, _ = MakeObjectHash(i)
	return
}

// MakeObjectHashString is MakeObjectHash with the digest hex-encoded, suited
// for content-derived identifiers like listing ids.
func MakeObjectHashString(i interface{}) (string, error) {
	b, err := MakeObjectHash(i)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

func MustMakeObjectHashString(i interface{}) string {
	s, _ := MakeObjectHashString(i)
	return s
}
