package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"
	ErrProtoHandshake  = "E_PROTO_HANDSHAKE"

	// Query layer.
	ErrBadRequest        = "E_BAD_REQUEST"
	ErrUnknownOp         = "E_UNKNOWN_OP"
	ErrDimensionNotFound = "E_DIMENSION_NOT_FOUND"
	ErrRateLimit         = "E_RATE_LIMIT"
	ErrInternal          = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrProtoVersion:      {},
	ErrProtoHandshake:    {},
	ErrBadRequest:        {},
	ErrUnknownOp:         {},
	ErrDimensionNotFound: {},
	ErrRateLimit:         {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
