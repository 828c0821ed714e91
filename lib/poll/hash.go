package poll

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// CommitHash binds a (choice, salt) pair for the commit stage: Keccak-256
// over the two values encoded as 32-byte big-endian words. The voter submits
// the digest at commit time and resupplies the pair at reveal time so it can
// be re-derived and compared.
func CommitHash(choice VoteOption, salt uint64) string {
	var buf [64]byte
	binary.BigEndian.PutUint64(buf[24:32], uint64(choice))
	binary.BigEndian.PutUint64(buf[56:64], salt)

	d := sha3.NewLegacyKeccak256()
	d.Write(buf[:])

	return hex.EncodeToString(d.Sum(nil))
}
