package common

// AuthorizationHeaderName carries the bearer token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme accepted for access tokens.
const BearerScheme = "Bearer"

// DefaultRole is assigned to users registered without an explicit role.
const DefaultRole = "user"
