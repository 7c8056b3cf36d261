// Package actor registers local actors and guards their key material.
//
// CreateActor generates an RSA keypair, builds the ActivityStreams Person
// document and persists both through the domain.ActorStore. Public material
// is freely readable; PrivateKey is the single privileged accessor and is
// consumed only by signing and decryption inside the core.
package actor
