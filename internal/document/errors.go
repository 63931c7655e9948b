package document

import "errors"

// InputError marks a request the caller got wrong, as opposed to a failure
// in the runtime or in Textract.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func inputErr(msg string) error { return &InputError{Msg: msg} }

// IsInputError reports whether err, or anything it wraps, is an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// Messages returned to callers for rejected requests.
const (
	MsgMissingBody   = "Missing request body"
	MsgInvalidBase64 = "Invalid base64 image encoding"
	MsgInvalidS3     = "Invalid S3Object structure, required: 'Bucket' and 'Name'"
	MsgInvalidInput  = "Invalid input: Provide 'image' as base64 or 'S3Object' with bucket and name"
)
