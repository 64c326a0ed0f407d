package auth

const (
	ContextKeyCredential = "credential"

	jsonKeyErrorCode = "error_code"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgMissingToken         = "MISSING_TOKEN"
	msgAuthUnavailable      = "AUTHORIZATION SERVICE UNAVAILABLE"
	msgCredentialNotFound   = "credential not found in context"
	msgInvalidCredentialCtx = "invalid credential in context"
)
