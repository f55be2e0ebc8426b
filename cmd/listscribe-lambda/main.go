package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"listscribe"
	"listscribe/model"
	"listscribe/transcribe"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const msgProcessingFailed = "An error occurred while processing the image."

// Params accepts inline base64 images, S3 object keys, or both. Inline
// images come first in the batch.
type Params struct {
	ImagePath  string   `json:"imagePath,omitempty"`
	ImagePaths []string `json:"imagePaths,omitempty"`
	ImageKeys  []string `json:"imageKeys,omitempty"`
}

type s3Getter interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type handler struct {
	transcriber listscribe.Transcriber
	s3          s3Getter
	bucket      string
}

func main() {
	ctx := context.Background()

	var modelConfig listscribe.ModelConfig
	if err := listscribe.DecodeEnv(&modelConfig); err != nil {
		slog.Error("SETUP: Failed to decode model config", "error", err)
		os.Exit(1)
	}

	mc, err := model.NewClient(ctx, modelConfig, http.DefaultClient)
	if err != nil {
		slog.Error("SETUP: Failed to create model client", "error", err)
		os.Exit(1)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to load AWS config", "error", err)
		os.Exit(1)
	}

	h := &handler{
		transcriber: transcribe.NewTranscriber(mc, listscribe.SharedSessionLogger{Logger: listscribe.NewStdoutTranscriptionLogger()}, nil),
		s3:          s3.NewFromConfig(awsCfg),
		bucket:      os.Getenv("IMAGE_S3_BUCKET"),
	}
	lambda.Start(h.handle)
}

func (h *handler) handle(ctx context.Context, params Params) (listscribe.TranscriptionResult, error) {
	images, err := h.images(ctx, params)
	if err != nil {
		slog.Error("RESULT: Bad request", "error", err)
		return listscribe.TranscriptionResult{}, err
	}

	res, err := h.transcriber.Run(ctx, images...)
	if err != nil {
		slog.Error("RESULT: Error handling request", "error", err)
		return listscribe.TranscriptionResult{}, errors.New(msgProcessingFailed)
	}
	return res, nil
}

func (h *handler) images(ctx context.Context, params Params) ([]string, error) {
	var images []string
	if params.ImagePath != "" {
		images = append(images, params.ImagePath)
	}
	images = append(images, params.ImagePaths...)

	if len(params.ImageKeys) > 0 && h.bucket == "" {
		return nil, errors.New("imageKeys given but IMAGE_S3_BUCKET is not set")
	}
	for _, key := range params.ImageKeys {
		out, err := h.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(h.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("get s3://%s/%s: %w", h.bucket, key, err)
		}
		b, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read s3://%s/%s: %w", h.bucket, key, err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(b))
	}

	if len(images) == 0 {
		return nil, errors.New("no image provided")
	}
	for i, img := range images {
		if _, err := listscribe.DecodeImage(img); err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
	}
	return images, nil
}
