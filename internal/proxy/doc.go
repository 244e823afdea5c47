// Package proxy implements the request forwarding engine: it builds the
// outbound request from the inbound one with protocol-correct header
// hygiene, performs the upstream call, and filters the response headers
// on the way back.
//
// Header handling follows RFC 7230 hop-by-hop semantics: headers whose
// meaning applies to a single transport leg are stripped in both
// directions. On the request side host, content-length and
// authorization are additionally dropped; content-length is recomputed
// by the transport from the actual body, and authorization, when
// needed, is re-supplied through the resolved target's injected
// headers.
package proxy
