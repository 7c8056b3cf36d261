// Package server is the node's HTTP routing layer.
//
// Routes
//
//	GET  /                              health text
//	POST /create-user/{username}        register an actor (201, 409 if taken)
//	GET  /user/{username}               Person profile document
//	GET  /user/{username}/followers     OrderedCollection of follower URIs
//	GET  /user/{username}/following     OrderedCollection of followed URIs
//	POST /send-message                  {sender, recipient, content}
//	GET  /decrypt/{username}            per-entry decryption of the inbox
//	POST /inbox/{username}              receive an activity (rate limited)
//	GET  /inbox/{username}              OrderedCollection of inbox payloads
//	GET  /outbox/{username}             OrderedCollection of sent activities
//	POST /follow                        {actor, object}
//	POST /like                          {actor, object}
//	GET  /metrics                       Prometheus exposition
//
// Errors are JSON {"error": "..."} with the status derived from the domain
// error kind: validation 400, not found 404, conflict 409, crypto 422,
// delivery 502, anything else 500.
//
// The server never holds a private key. It depends on the narrow Actors
// interface, which has no private-key accessor.
package server
