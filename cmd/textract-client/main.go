package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/client"
)

func main() {
	endpoint := flag.String("endpoint", os.Getenv("TEXTRACT_API_URL"), "API Gateway invoke URL")
	file := flag.String("file", "", "local image or PDF to send inline as base64")
	bucket := flag.String("bucket", "", "S3 bucket of the document (with -name)")
	name := flag.String("name", "", "S3 object key of the document (with -bucket)")
	raw := flag.Bool("json", false, "print the raw Blocks JSON instead of lines")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*endpoint)

	var (
		blocks []types.Block
		err    error
	)
	switch {
	case *file != "":
		data, rerr := os.ReadFile(*file)
		if rerr != nil {
			log.Fatalf("read %s: %v", *file, rerr)
		}
		blocks, err = c.DetectImage(ctx, data)
	case *bucket != "" && *name != "":
		blocks, err = c.DetectS3(ctx, *bucket, *name)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("detect: %v", err)
	}

	if *raw {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"Blocks": blocks}); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}
	fmt.Println(strings.Join(client.Lines(blocks), "\n"))
}
