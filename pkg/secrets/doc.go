// Package secrets provides AES-256-GCM encryption with HKDF compound key
// derivation, used to keep persisted credentials unreadable at rest.
//
// Two 32-byte keys are combined: an application key (the secret) and a scope
// key that separates independent data sets encrypted under the same secret.
// The actual encryption key is derived with HKDF-SHA256 and wiped after use.
//
// # Usage
//
//	appKey, _ := secrets.GenerateKey()
//	scope := secrets.ScopeKey("tokenstore", "default")
//
//	sealed, err := secrets.EncryptBytes(appKey, scope, []byte("payload"))
//	if err != nil {
//		return err
//	}
//
//	plain, err := secrets.DecryptBytes(appKey, scope, sealed)
//	if errors.Is(err, secrets.ErrDecryptionFailed) {
//		// wrong key or tampered data
//	}
//
// The ciphertext layout is nonce || sealed data. EncryptString and
// DecryptString wrap the same operations with base64url encoding.
package secrets
