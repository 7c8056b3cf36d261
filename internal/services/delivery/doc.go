// Package delivery sends, receives and decrypts messages between actors.
//
// Send follows a fixed order: validate, build the Create activity, append it
// to the sender's outbox, resolve the recipient key, hybrid-encrypt the
// content, sign the request, attempt the network hop under a bounded timeout,
// and finally write the envelope to the recipient's inbox. The inbox write
// runs whatever the network outcome; a failed hop surfaces as a
// *domain.DeliveryError next to a fully populated DeliveryResult.
package delivery
