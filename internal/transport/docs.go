// Package transport implements the HTTP/1.1 message exchange of a single
// connection: serializing a prepared request, parsing the response head,
// selecting the body framing and deciding whether the connection can serve
// another request afterwards.
//
// The message syntax follows RFC 9112, semantics are left to callers.
package transport
