// Package domain defines the core data model, contracts and error taxonomy of
// the node. It contains plain types (wire/state), interfaces and errors only.
//
// Types live in the types subpackage and interfaces in the interfaces
// subpackage; exports.go aliases both so callers can import a single package.
package domain
