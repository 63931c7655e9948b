package document

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type s3ObjectField struct {
	Bucket  *string `json:"Bucket"`
	Name    *string `json:"Name"`
	Version *string `json:"Version"`
}

// ParseRequest turns a request body into a Source. Keys are recognized by
// presence; when both are sent, "image" is used.
func ParseRequest(body string) (Source, error) {
	if strings.TrimSpace(body) == "" {
		return nil, inputErr(MsgMissingBody)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		// Valid JSON that is not an object has neither key.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, inputErr(MsgInvalidInput)
		}
		return nil, fmt.Errorf("parse request body: %w", err)
	}

	if raw, ok := fields["image"]; ok {
		return parseImage(raw)
	}
	if raw, ok := fields["S3Object"]; ok {
		return parseS3Object(raw)
	}
	return nil, inputErr(MsgInvalidInput)
}

// Keys reports which top-level keys a body carries, for logging. It never
// fails; unparsable bodies yield nil.
func Keys(body string) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	return keys
}

func parseImage(raw json.RawMessage) (Source, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, inputErr(MsgInvalidBase64)
	}
	b, err := DecodeBase64(s)
	if err != nil || len(b) == 0 {
		return nil, inputErr(MsgInvalidBase64)
	}
	if len(b) > MaxInlineBytes {
		return nil, inputErr(fmt.Sprintf("Image exceeds %d bytes", MaxInlineBytes))
	}
	return InlineImage{Bytes: b}, nil
}

func parseS3Object(raw json.RawMessage) (Source, error) {
	var f s3ObjectField
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, inputErr(MsgInvalidS3)
	}
	if f.Bucket == nil || f.Name == nil {
		return nil, inputErr(MsgInvalidS3)
	}
	// S3 keys may carry leading or trailing spaces; pass them through as sent.
	if *f.Bucket == "" || *f.Name == "" {
		return nil, inputErr(MsgInvalidS3)
	}
	ref := S3Reference{Bucket: *f.Bucket, Name: *f.Name}
	if f.Version != nil {
		ref.Version = *f.Version
	}
	return ref, nil
}

// DecodeBase64 accepts standard base64 with or without padding, an optional
// data URL prefix, and embedded line breaks.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, fmt.Errorf("data url without payload")
		}
		s = s[i+1:]
	}
	s = strings.Join(strings.Fields(s), "")

	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
