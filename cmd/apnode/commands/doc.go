// Package commands defines the apnode CLI and wires dependencies for subcommands.
//
// Commands
//
//   - serve         Run the HTTP node
//   - create-actor  Register a local actor and generate its keypair
//   - pubkey        Print an actor's public key and fingerprint
//   - send          Send an encrypted message between actors
//   - inbox         List an actor's inbox entries
//   - outbox        List an actor's sent activities
//   - decrypt       Decrypt an actor's inbox entry by entry
//   - follow        Record a follow
//   - followers     List an actor's followers (or --following)
//   - like          Build a Like activity
//
// # Implementation
//
// The root command loads an optional .env file, then the YAML config and
// APNODE_* environment, applies flag overrides and builds the dependency
// graph before any subcommand runs. The data directory is locked by the
// embedded database, so one-shot commands cannot run while serve holds it.
package commands
