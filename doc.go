// Package omegacache implements a safe distributed cache on top of a byte
// store, a named lock service and an optional Bloom filter.
//
// Components:
//   - store.Store: byte store with TTL and multi-key operations (Redis, Ristretto).
//   - codec.Codec[V]: (de)serializes V <-> []byte. The JSON codec stores strings verbatim.
//   - lock.Locker: named locks serializing loads per key (Redlock via redsync, or in-process).
//   - bloom.Filter: penetration guard; keys are added once their value is known to exist.
//
// Safe read:
//
//	v, ok, err := c.SafeGet(ctx, "user:42", loadUser, omegacache.LoadOptions{Bloom: bf})
//
// runs a plain read first. On a miss it consults the optional get-filter and
// Bloom filter, then takes the lock "safe_get_distributed_lock_get:user:42",
// reads again, and only then calls the loader. Non-blank results are written
// through with the TTL and added to the Bloom filter. Blank results are never
// cached.
package omegacache
