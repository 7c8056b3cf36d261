// Package crypto holds the cryptographic primitives of the node.
//
// Contents
//
//   - RSA keypair generation and PEM codecs: SPKI public keys, PKCS#8 private
//     keys (GenerateRSA, EncodePublicKeyPEM, ParsePrivateKeyPEM, ...)
//   - Hybrid encryption of message bodies: AES-256-CBC with PKCS#7 padding,
//     the per-message key wrapped with RSA-OAEP(SHA-256) (Encrypt, Decrypt)
//   - Direct RSA-OAEP encryption for short payloads (EncryptDirect); the
//     ceiling is MaxDirectPlaintext, 190 bytes for a 2048-bit key
//   - HTTP signatures over "(request-target) host date digest" with
//     rsa-sha256 (HTTPSigner, ParseSignature) and body digests (Digest)
//   - Short public-key fingerprints for display (Fingerprint)
//
// # Notes
//
// Decryption failures are deliberately uniform: a wrong key, a corrupted
// body and bad padding all return ErrDecryptionFailed, which matches
// domain.ErrCrypto.
package crypto
