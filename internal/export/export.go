package export

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// BlockRow matches the Athena table columns over the export prefix.
// dt and source are partition keys taken from the object key.
type BlockRow struct {
	RequestID  string  `parquet:"name=request_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DetectedAt string  `parquet:"name=detected_at, type=BYTE_ARRAY, convertedtype=UTF8"` // RFC3339
	SourceRef  string  `parquet:"name=source_ref, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	BlockID    string  `parquet:"name=block_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	BlockType  string  `parquet:"name=block_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Page       int32   `parquet:"name=page, type=INT32"`
	Text       string  `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8"`
	TextType   string  `parquet:"name=text_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Confidence float64 `parquet:"name=confidence, type=DOUBLE"`
	BoxLeft    float64 `parquet:"name=box_left, type=DOUBLE"`
	BoxTop     float64 `parquet:"name=box_top, type=DOUBLE"`
	BoxWidth   float64 `parquet:"name=box_width, type=DOUBLE"`
	BoxHeight  float64 `parquet:"name=box_height, type=DOUBLE"`
}

type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Batch struct {
	RequestID  string
	SourceKind string
	SourceRef  string
	DetectedAt time.Time
	Blocks     []types.Block
}

type Exporter struct {
	s3     S3Client
	bucket string
	prefix string
	tmpDir string
}

func NewExporter(c S3Client, bucket, prefix string) *Exporter {
	return &Exporter{s3: c, bucket: bucket, prefix: prefix, tmpDir: os.TempDir()}
}

// Export writes one Parquet object per batch and returns its key.
// Key layout: <prefix>dt=YYYY-MM-DD/source=<kind>/part-<rand>.parquet
func (e *Exporter) Export(ctx context.Context, b Batch) (string, error) {
	if len(b.Blocks) == 0 {
		return "", nil
	}

	rows := Rows(b)
	data, err := e.encode(rows)
	if err != nil {
		return "", err
	}

	key := ObjectKey(e.prefix, b.SourceKind, b.DetectedAt, randHex(8))
	_, err = e.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("s3 putobject failed: %w", err)
	}
	return key, nil
}

func ObjectKey(prefix, kind string, at time.Time, suffix string) string {
	return fmt.Sprintf("%sdt=%s/source=%s/part-%s.parquet",
		ensureTrailingSlash(prefix),
		at.UTC().Format("2006-01-02"),
		kind,
		suffix,
	)
}

func Rows(b Batch) []BlockRow {
	at := b.DetectedAt.UTC().Format(time.RFC3339)
	rows := make([]BlockRow, 0, len(b.Blocks))
	for _, blk := range b.Blocks {
		r := BlockRow{
			RequestID:  b.RequestID,
			DetectedAt: at,
			SourceRef:  b.SourceRef,
			BlockID:    aws.ToString(blk.Id),
			BlockType:  string(blk.BlockType),
			Page:       aws.ToInt32(blk.Page),
			Text:       aws.ToString(blk.Text),
			TextType:   string(blk.TextType),
			Confidence: float64(aws.ToFloat32(blk.Confidence)),
		}
		// DetectDocumentText omits Page on single-page input
		if r.Page == 0 {
			r.Page = 1
		}
		if blk.Geometry != nil && blk.Geometry.BoundingBox != nil {
			bb := blk.Geometry.BoundingBox
			r.BoxLeft = float64(bb.Left)
			r.BoxTop = float64(bb.Top)
			r.BoxWidth = float64(bb.Width)
			r.BoxHeight = float64(bb.Height)
		}
		rows = append(rows, r)
	}
	return rows
}

func (e *Exporter) encode(rows []BlockRow) ([]byte, error) {
	localPath := filepath.Join(e.tmpDir, "blocks_"+randHex(8)+".parquet")
	defer func() { _ = os.Remove(localPath) }()

	fw, err := local.NewLocalFileWriter(localPath)
	if err != nil {
		return nil, fmt.Errorf("parquet file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(BlockRow), 1)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.RowGroupSize = 16 * 1024 * 1024
	pw.PageSize = 8 * 1024
	pw.CompressionType = 0 // uncompressed

	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return nil, fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet write stop: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("parquet close: %w", err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read parquet tmp: %w", err)
	}
	return data, nil
}

func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
