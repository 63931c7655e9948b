package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/rs/zerolog"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/detect"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/document"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/export"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/logging"
	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/notify"
)

type Detector interface {
	Detect(ctx context.Context, src document.Source) (*detect.Result, error)
}

type BlockCache interface {
	Get(ctx context.Context, cacheKey string) ([]types.Block, bool, error)
	Put(ctx context.Context, cacheKey, sourceRef string, blocks []types.Block) (bool, error)
}

type BlockExporter interface {
	Export(ctx context.Context, b export.Batch) (string, error)
}

type Notifier interface {
	Publish(ctx context.Context, ev notify.Event) error
}

// TextractHandler serves the API Gateway endpoint. Cache, Exporter and
// Notifier are optional; nil disables them.
type TextractHandler struct {
	Detector Detector
	Cache    BlockCache
	Exporter BlockExporter
	Notifier Notifier
	Log      zerolog.Logger

	now func() time.Time
}

func NewTextractHandler(d Detector, log zerolog.Logger) *TextractHandler {
	return &TextractHandler{Detector: d, Log: log, now: time.Now}
}

func (h *TextractHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logging.ForRequest(ctx, h.Log)
	if ev := log.Debug(); ev.Enabled() {
		ev.Str("method", req.HTTPMethod).
			Str("path", req.Path).
			Int("body_bytes", len(req.Body)).
			Bool("base64_body", req.IsBase64Encoded).
			Strs("keys", document.Keys(req.Body)).
			Msg("received event")
	}

	body := req.Body
	if req.IsBase64Encoded && body != "" {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			log.Error().Err(err).Msg("input validation error")
			return errResp(&document.InputError{Msg: "Invalid base64 request body"}), nil
		}
		body = string(raw)
	}

	src, err := document.ParseRequest(body)
	if err != nil {
		if document.IsInputError(err) {
			log.Error().Err(err).Msg("input validation error")
		} else {
			log.Error().Err(err).Msg("unexpected error")
		}
		return errResp(err), nil
	}
	log = log.With().Str("source", src.Kind()).Str("ref", src.Ref()).Logger()

	blocks, pages, cached := h.lookup(ctx, log, src)
	if !cached {
		res, err := h.Detector.Detect(ctx, src)
		if err != nil {
			log.Error().Err(err).Msg("unexpected error")
			return errResp(err), nil
		}
		blocks, pages = res.Blocks, res.Pages
		h.store(ctx, log, src, blocks)
	}

	summary := detect.Summarize(blocks)
	log.Info().
		Int("blocks", summary.Blocks).
		Int("lines", len(summary.Lines)).
		Bool("cached", cached).
		Msg("processed document with textract")

	h.publish(ctx, log, src, blocks, pages, cached, summary)

	return jsonResp(http.StatusOK, BlocksResponse{Blocks: blocks}), nil
}

func (h *TextractHandler) lookup(ctx context.Context, log zerolog.Logger, src document.Source) ([]types.Block, int32, bool) {
	if h.Cache == nil || !src.Cacheable() {
		return nil, 0, false
	}
	blocks, ok, err := h.Cache.Get(ctx, src.CacheKey())
	if err != nil {
		log.Warn().Err(err).Msg("cache lookup failed")
		return nil, 0, false
	}
	return blocks, 0, ok
}

func (h *TextractHandler) store(ctx context.Context, log zerolog.Logger, src document.Source, blocks []types.Block) {
	if h.Cache == nil || !src.Cacheable() {
		return
	}
	stored, err := h.Cache.Put(ctx, src.CacheKey(), src.Ref(), blocks)
	if err != nil {
		log.Warn().Err(err).Msg("cache store failed")
		return
	}
	if !stored {
		log.Debug().Msg("result too large to cache")
	}
}

// publish runs export and notification; neither can fail the request.
func (h *TextractHandler) publish(ctx context.Context, log zerolog.Logger, src document.Source, blocks []types.Block, pages int32, cached bool, summary detect.Summary) {
	at := h.clock()
	reqID := logging.RequestID(ctx)

	if h.Exporter != nil && !cached {
		key, err := h.Exporter.Export(ctx, export.Batch{
			RequestID:  reqID,
			SourceKind: src.Kind(),
			SourceRef:  src.Ref(),
			DetectedAt: at,
			Blocks:     blocks,
		})
		if err != nil {
			log.Warn().Err(err).Msg("block export failed")
		} else if key != "" {
			log.Debug().Str("key", key).Msg("exported blocks")
		}
	}

	if h.Notifier != nil {
		err := h.Notifier.Publish(ctx, notify.Event{
			RequestID:  reqID,
			SourceKind: src.Kind(),
			SourceRef:  src.Ref(),
			Pages:      pages,
			Cached:     cached,
			Summary:    summary,
			At:         at,
		})
		if err != nil {
			log.Warn().Err(err).Msg("notification failed")
		}
	}
}

func (h *TextractHandler) clock() time.Time {
	if h.now == nil {
		return time.Now()
	}
	return h.now()
}
