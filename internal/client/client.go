package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// Client posts documents to the deployed API Gateway endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

func New(endpoint string) *Client {
	return &Client{Endpoint: strings.TrimSpace(endpoint), HTTP: http.DefaultClient}
}

type imageRequest struct {
	Image string `json:"image"`
}

type s3Request struct {
	S3Object struct {
		Bucket string `json:"Bucket"`
		Name   string `json:"Name"`
	} `json:"S3Object"`
}

type response struct {
	Blocks []types.Block `json:"Blocks"`
	Error  string        `json:"Error"`
}

func (c *Client) DetectImage(ctx context.Context, image []byte) ([]types.Block, error) {
	return c.post(ctx, imageRequest{Image: base64.StdEncoding.EncodeToString(image)})
}

func (c *Client) DetectS3(ctx context.Context, bucket, name string) ([]types.Block, error) {
	var r s3Request
	r.S3Object.Bucket = bucket
	r.S3Object.Name = name
	return c.post(ctx, r)
}

func (c *Client) post(ctx context.Context, payload any) ([]types.Block, error) {
	if c.Endpoint == "" {
		return nil, fmt.Errorf("missing endpoint")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("http %d: %s", res.StatusCode, truncate(string(raw), 300))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if out.Error != "" {
			return nil, fmt.Errorf("http %d: %s", res.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("http %d: %s", res.StatusCode, truncate(string(raw), 300))
	}
	return out.Blocks, nil
}

// Lines returns the text of LINE blocks in reading order.
func Lines(blocks []types.Block) []string {
	var out []string
	for _, b := range blocks {
		if b.BlockType == types.BlockTypeLine && b.Text != nil {
			out = append(out, *b.Text)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
