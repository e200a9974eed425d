package moderation

import "errors"

// Error taxonomy shared by every stage of the filter pipeline. Handlers map
// ErrInvalidInput to 400 and everything else to a fail-open 500.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrFetch          = errors.New("failed to fetch media")
	ErrDecode         = errors.New("failed to decode media")
	ErrClassification = errors.New("classification failed")
)

// InputError is an ErrInvalidInput whose message is shown to the caller as is.
type InputError struct {
	Msg string
}

func NewInputError(msg string) *InputError {
	return &InputError{Msg: msg}
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

var (
	ErrNoImageURL    = NewInputError("No image_url provided")
	ErrNoFilters     = NewInputError("No user_filters provided")
	ErrNoVideoSource = NewInputError("No file or video_url provided")
)
