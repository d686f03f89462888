// Package common contains shared constants and sentinel errors used across
// TOTPKeeper components.
package common

// DefaultIssuer is the issuer label shown by authenticator apps when no
// issuer is configured.
const DefaultIssuer = "TOTPKeeper"

// JSONCodecName is the gRPC content-subtype used by client and server.
const JSONCodecName = "json"
