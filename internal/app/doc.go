// Package app loads configuration and wires the node's dependencies.
//
// LoadConfig layers defaults, an optional YAML file and APNODE_* environment
// variables. NewWire builds the stores, services and HTTP server from the
// result; Node is the facade the CLI drives.
package app
