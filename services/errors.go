package services

// ErrorCode is one of the protocol error codes a response may carry.
// Protocol errors are rendered into the document; they are never Go errors.
type ErrorCode string

const (
	BadVerb                 ErrorCode = "badVerb"
	BadArgument             ErrorCode = "badArgument"
	IDDoesNotExist          ErrorCode = "idDoesNotExist"
	CannotDisseminateFormat ErrorCode = "cannotDisseminateFormat"
	NoRecordsMatch          ErrorCode = "noRecordsMatch"
	BadResumptionToken      ErrorCode = "badResumptionToken"
	NoSetHierarchy          ErrorCode = "noSetHierarchy"
)

var errorMessages = map[ErrorCode]string{
	BadVerb:                 "Illegal or missing OAI-PMH verb",
	BadArgument:             "The request includes illegal or missing arguments",
	IDDoesNotExist:          "The value of the identifier argument is unknown in this repository",
	CannotDisseminateFormat: "The requested metadata format is not supported by this repository",
	NoRecordsMatch:          "The combination of arguments results in an empty list",
	BadResumptionToken:      "The value of the resumptionToken argument is invalid or expired",
	NoSetHierarchy:          "This repository does not support sets",
}

// Valid reports whether the code is part of the protocol enumeration.
func (c ErrorCode) Valid() bool {
	_, ok := errorMessages[c]
	return ok
}

// Message returns the default message for the code.
func (c ErrorCode) Message() string {
	return errorMessages[c]
}
