package document

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/require"
)

func TestParseRequestInlineImage(t *testing.T) {
	raw := []byte("\x89PNG fake page")
	body := `{"image":"` + base64.StdEncoding.EncodeToString(raw) + `"}`

	src, err := ParseRequest(body)
	require.NoError(t, err)

	img, ok := src.(InlineImage)
	require.True(t, ok)
	require.Equal(t, raw, img.Bytes)
	require.Equal(t, KindInline, src.Kind())
	require.Equal(t, raw, src.Document().Bytes)
	require.Nil(t, src.Document().S3Object)
	require.True(t, strings.HasPrefix(src.CacheKey(), "sha256:"))
}

func TestParseRequestS3Object(t *testing.T) {
	src, err := ParseRequest(`{"S3Object":{"Bucket":"scans","Name":"inbox/receipt.png"}}`)
	require.NoError(t, err)

	ref, ok := src.(S3Reference)
	require.True(t, ok)
	require.Equal(t, "scans", ref.Bucket)
	require.Equal(t, "inbox/receipt.png", ref.Name)

	doc := src.Document()
	require.Nil(t, doc.Bytes)
	require.Equal(t, "scans", aws.ToString(doc.S3Object.Bucket))
	require.Equal(t, "inbox/receipt.png", aws.ToString(doc.S3Object.Name))
	require.Nil(t, doc.S3Object.Version)
	require.Equal(t, "s3://scans/inbox/receipt.png", src.CacheKey())
}

func TestParseRequestS3ObjectVersion(t *testing.T) {
	src, err := ParseRequest(`{"S3Object":{"Bucket":"scans","Name":"a.png","Version":"v2"}}`)
	require.NoError(t, err)
	require.Equal(t, "v2", aws.ToString(src.Document().S3Object.Version))
	require.Equal(t, "s3://scans/a.png?versionId=v2", src.CacheKey())
}

func TestParseRequestS3ObjectKeptVerbatim(t *testing.T) {
	src, err := ParseRequest(`{"S3Object":{"Bucket":"b","Name":" scan .png ","Version":" v1 "}}`)
	require.NoError(t, err)

	obj := src.Document().S3Object
	require.Equal(t, "b", aws.ToString(obj.Bucket))
	require.Equal(t, " scan .png ", aws.ToString(obj.Name))
	require.Equal(t, " v1 ", aws.ToString(obj.Version))
}

func TestCacheable(t *testing.T) {
	require.True(t, InlineImage{Bytes: []byte("x")}.Cacheable())
	require.False(t, S3Reference{Bucket: "b", Name: "n"}.Cacheable())
	require.True(t, S3Reference{Bucket: "b", Name: "n", Version: "v2"}.Cacheable())
}

func TestParseRequestImageWinsOverS3Object(t *testing.T) {
	body := `{"image":"` + base64.StdEncoding.EncodeToString([]byte("x")) + `","S3Object":{"Bucket":"b","Name":"n"}}`
	src, err := ParseRequest(body)
	require.NoError(t, err)
	require.Equal(t, KindInline, src.Kind())
}

func TestParseRequestInputErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"empty", "", MsgMissingBody},
		{"blank", "  \n", MsgMissingBody},
		{"no recognized key", `{"document":"abc"}`, MsgInvalidInput},
		{"json null", `null`, MsgInvalidInput},
		{"json array", `[]`, MsgInvalidInput},
		{"json number", `42`, MsgInvalidInput},
		{"json string", `"hello"`, MsgInvalidInput},
		{"bad base64", `{"image":"not base64!!"}`, MsgInvalidBase64},
		{"empty image", `{"image":""}`, MsgInvalidBase64},
		{"image not a string", `{"image":42}`, MsgInvalidBase64},
		{"s3 missing name", `{"S3Object":{"Bucket":"b"}}`, MsgInvalidS3},
		{"s3 missing bucket", `{"S3Object":{"Name":"n"}}`, MsgInvalidS3},
		{"s3 empty bucket", `{"S3Object":{"Bucket":"","Name":"n"}}`, MsgInvalidS3},
		{"s3 empty name", `{"S3Object":{"Bucket":"b","Name":""}}`, MsgInvalidS3},
		{"s3 not an object", `{"S3Object":"s3://b/n"}`, MsgInvalidS3},
		{"s3 null", `{"S3Object":null}`, MsgInvalidS3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRequest(tc.body)
			require.Error(t, err)
			require.True(t, IsInputError(err))
			require.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestParseRequestMalformedJSONIsNotInputError(t *testing.T) {
	_, err := ParseRequest(`{"image":`)
	require.Error(t, err)
	require.False(t, IsInputError(err))
	require.Contains(t, err.Error(), "parse request body")
}

func TestParseRequestOversizedImage(t *testing.T) {
	big := make([]byte, MaxInlineBytes+1)
	body := `{"image":"` + base64.StdEncoding.EncodeToString(big) + `"}`

	_, err := ParseRequest(body)
	require.True(t, IsInputError(err))
	require.Contains(t, err.Error(), "exceeds")
}

func TestDecodeBase64Variants(t *testing.T) {
	want := []byte("hello, textract")
	std := base64.StdEncoding.EncodeToString(want)

	got, err := DecodeBase64(std)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = DecodeBase64(base64.RawStdEncoding.EncodeToString(want))
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = DecodeBase64("data:image/png;base64," + std)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = DecodeBase64(std[:8] + "\n" + std[8:])
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = DecodeBase64("data:image/png;base64")
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	require.ElementsMatch(t, []string{"image", "extra"}, Keys(`{"image":"x","extra":1}`))
	require.Nil(t, Keys("not json"))
}

func TestInlineRefIsShortDigest(t *testing.T) {
	src := InlineImage{Bytes: []byte("abc")}
	require.Len(t, src.Ref(), len("sha256:")+16)
	require.True(t, strings.HasPrefix(src.CacheKey(), src.Ref()))
}
