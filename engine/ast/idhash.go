package ast

import (
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// TagID derives a stable identifier for a tag occurrence from its byte
// position and raw body. It is deterministic across runs (unlike a
// pointer or a random uuid), so two parses of the same template bytes
// produce identical tag ids, which the renderer and dependency analyzer
// both rely on when keying resolved values.
func TagID(start int, raw string) string {
	sum := blake2b.Sum256([]byte(strconv.Itoa(start) + ":" + raw))
	return hex.EncodeToString(sum[:8])
}
