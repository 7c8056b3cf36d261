// Package federation speaks HTTP to other nodes.
//
// HTTP implements domain.Transport: it POSTs a signed activity to a recipient
// inbox with the Host, Date, Digest, Content-Type and Signature headers the
// signature covers. FetchProfile retrieves a remote actor's Person document,
// which is how foreign keyIds are resolved when inbound verification is on.
//
// Non-2xx answers to Deliver are not errors: they are returned as a
// RemoteResponse so the caller can classify the hop.
package federation
