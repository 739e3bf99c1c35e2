package common

// SessionCookieName is the cookie carrying the session token, both in HTTP
// Cookie headers and in gRPC "cookie" metadata.
const SessionCookieName = "user_token"

// CookieMetadataKey is the gRPC metadata key holding cookie-style pairs.
const CookieMetadataKey = "cookie"

// SetCookieMetadataKey is the gRPC header key the server uses to hand out
// a session cookie.
const SetCookieMetadataKey = "set-cookie"
