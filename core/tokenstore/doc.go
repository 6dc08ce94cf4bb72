// Package tokenstore persists the current access/refresh token pair.
//
// A Store holds at most one Pair. Save replaces it as a whole, Load returns it
// (or ok=false when nothing usable is stored) and Clear removes it. Stores do
// not inspect token contents.
//
// Backends:
//
//   - MemoryStore keeps the pair in process memory.
//   - FileStore writes a JSON record with an atomic rename, optionally
//     encrypted with pkg/secrets.
//   - RedisStore keeps a hash per namespace, written in a MULTI/EXEC block.
//   - PostgresStore keeps one row per namespace in session_tokens.
//
// A record that cannot be decoded, cannot be decrypted or lacks either token
// is reported as absent rather than as an error:
//
//	pair, ok, err := store.Load(ctx)
//	switch {
//	case err != nil:
//		// storage unavailable
//	case !ok:
//		// no session
//	default:
//		use(pair.AccessToken)
//	}
package tokenstore
