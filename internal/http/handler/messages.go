package handler

const (
	jsonKeyErrorCode = "error_code"
	jsonKeyBadParams = "bad_params"

	paramID = "id"

	msgMissingCredentials      = "MISSING CREDENTIALS"
	msgInsufficientAccess      = "INSUFFICIENT ACCESS LEVEL"
	msgUserNotFound            = "USER NOT FOUND"
	msgEmailAlreadyExists      = "USER WITH EMAIL ALREADY EXISTS"
	msgInvalidParams           = "INVALID PARAMETERS"
	msgInvalidUserID           = "INVALID USER ID"
	msgNoUpdateFields          = "MUST SUPPLY AT LEAST ONE VALID USER FIELD"
	msgInternalError           = "INTERNAL SERVER ERROR"
	msgContentTypeJSONRequired = "CONTENT-TYPE MUST BE APPLICATION/JSON"
	msgInvalidRequestBody      = "INVALID REQUEST BODY"

	reasonRequired = "required"
)
