package stego

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrCapacityExceeded  = errors.New("payload exceeds image capacity")
	ErrTruncatedImage    = errors.New("image is too small for the declared payload")
	ErrInvalidLength     = errors.New("invalid payload length")
	ErrNoPayload         = errors.New("no embedded payload found")
	ErrUsage             = errors.New("usage")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrLossyFormat       = errors.New("lossy image format cannot carry LSB data")
)

// Kind classifies an error so callers can branch without matching messages.
type Kind int

const (
	KindNone Kind = iota
	KindUsage
	KindFileNotFound
	KindCapacityExceeded
	KindTruncatedImage
	KindInvalidLength
	KindNoPayload
	KindUnsupportedFormat
	KindLossyFormat
	KindUnknown
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUsage, KindUsage},
	{ErrFileNotFound, KindFileNotFound},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrTruncatedImage, KindTruncatedImage},
	{ErrInvalidLength, KindInvalidLength},
	{ErrNoPayload, KindNoPayload},
	{ErrUnsupportedFormat, KindUnsupportedFormat},
	{ErrLossyFormat, KindLossyFormat},
}

// KindOf returns the Kind of the first sentinel err wraps.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindUsage:
		return "usage"
	case KindFileNotFound:
		return "file_not_found"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindTruncatedImage:
		return "truncated_image"
	case KindInvalidLength:
		return "invalid_length"
	case KindNoPayload:
		return "no_payload"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindLossyFormat:
		return "lossy_format"
	default:
		return "unknown"
	}
}
