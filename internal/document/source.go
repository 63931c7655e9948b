package document

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// MaxInlineBytes is the synchronous DetectDocumentText limit for raw bytes.
const MaxInlineBytes = 10 * 1024 * 1024

const (
	KindInline = "inline"
	KindS3     = "s3"
)

// Source is where the document comes from: InlineImage or S3Reference.
type Source interface {
	Kind() string
	// Document builds the Textract input for this source.
	Document() *types.Document
	// CacheKey is stable key material identifying the document content.
	CacheKey() string
	// Cacheable reports whether CacheKey pins the document content.
	Cacheable() bool
	// Ref is a short human-readable reference for logs and exports.
	Ref() string
}

type InlineImage struct {
	Bytes []byte
}

func (InlineImage) Kind() string { return KindInline }

func (s InlineImage) Document() *types.Document {
	return &types.Document{Bytes: s.Bytes}
}

func (s InlineImage) CacheKey() string {
	return "sha256:" + s.digest()
}

func (InlineImage) Cacheable() bool { return true }

func (s InlineImage) Ref() string {
	return "sha256:" + s.digest()[:16]
}

func (s InlineImage) digest() string {
	sum := sha256.Sum256(s.Bytes)
	return hex.EncodeToString(sum[:])
}

type S3Reference struct {
	Bucket  string
	Name    string
	Version string // optional object version
}

func (S3Reference) Kind() string { return KindS3 }

func (s S3Reference) Document() *types.Document {
	obj := &types.S3Object{
		Bucket: aws.String(s.Bucket),
		Name:   aws.String(s.Name),
	}
	if s.Version != "" {
		obj.Version = aws.String(s.Version)
	}
	return &types.Document{S3Object: obj}
}

func (s S3Reference) CacheKey() string {
	k := "s3://" + s.Bucket + "/" + s.Name
	if s.Version != "" {
		k += "?versionId=" + s.Version
	}
	return k
}

// Cacheable is false for unversioned references: the object behind
// bucket/name can be overwritten or deleted between requests.
func (s S3Reference) Cacheable() bool { return s.Version != "" }

func (s S3Reference) Ref() string {
	return "s3://" + s.Bucket + "/" + s.Name
}
