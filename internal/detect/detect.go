package detect

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/document"
)

type TextractClient interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

type Result struct {
	Blocks       []types.Block
	Pages        int32
	ModelVersion string
}

type Detector struct {
	client TextractClient
	log    zerolog.Logger
}

func NewDetector(c TextractClient, log zerolog.Logger) *Detector {
	return &Detector{client: c, log: log}
}

// Detect makes exactly one DetectDocumentText call. The returned error keeps
// the service message so callers can surface it as-is.
func (d *Detector) Detect(ctx context.Context, src document.Source) (*Result, error) {
	out, err := d.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: src.Document(),
	})
	if err != nil {
		ev := d.log.Error().Err(err).Str("source", src.Kind())
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			ev = ev.Str("error_code", apiErr.ErrorCode()).Str("error_message", apiErr.ErrorMessage())
		}
		ev.Msg("textract client error")
		return nil, fmt.Errorf("textract DetectDocumentText: %w", err)
	}

	res := &Result{
		Blocks:       out.Blocks,
		ModelVersion: aws.ToString(out.DetectDocumentTextModelVersion),
	}
	if res.Blocks == nil {
		res.Blocks = []types.Block{}
	}
	if out.DocumentMetadata != nil {
		res.Pages = aws.ToInt32(out.DocumentMetadata.Pages)
	}
	return res, nil
}
