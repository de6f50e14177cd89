// Package auth holds everything needed to decide who is calling the shop
// and what they are allowed to do.
//
// There is no session table. A successful login produces a signed token
// (HS256 JWT) carrying the username, the roles and an expiration date;
// every other request presents that token back as a bearer credential and
// the token alone is enough to rebuild the caller Identity.
//
// This means the only secret that matters is the signing key, which is
// loaded once at startup (see SecretFromEnv) and never leaves the Codec.
// If the key leaks, every token can be forged, so rotate it and restart.
//
// Once a token is issued it cannot be taken back, the user will keep access
// until the token expires even if the account is disabled in the meantime.
// Keep the validity window short.
package auth
