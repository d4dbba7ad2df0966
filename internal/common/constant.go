package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// UserIDKey is the JWT claim and log attribute name for the authenticated
// account identity.
const UserIDKey = "user_id"
