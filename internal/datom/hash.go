package datom

// FNV-1a 64-bit parameters. Stored addresses depend on these exact values.
const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
)

// FNV1a64 hashes the UTF-8 bytes of s with 64-bit FNV-1a.
func FNV1a64(s string) uint64 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// Address maps an entity id to its storage key: the FNV-1a hash
// reinterpreted as a two's-complement int64.
//
// Distinct ids may collide; backends detect that on read by comparing the
// id stored in the record.
func Address(id string) int64 {
	return int64(FNV1a64(id))
}
