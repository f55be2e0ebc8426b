package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"listscribe"
	"listscribe/model/mock"
	"listscribe/tools"
	"listscribe/transcribe"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

type failingTranscriber struct{}

func (failingTranscriber) Run(ctx context.Context, images ...string) (listscribe.TranscriptionResult, error) {
	return listscribe.TranscriptionResult{}, errors.New("bedrock: throttled")
}

func newHandler(bucket string) *handler {
	return &handler{
		transcriber: transcribe.NewTranscriber(mock.NewClient("", tools.NewRegistry()), nil, nil),
		s3:          &fakeS3{objects: map[string][]byte{"lists/monday.jpg": []byte("jpeg bytes")}},
		bucket:      bucket,
	}
}

func TestHandle(t *testing.T) {
	inline := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	tests := []struct {
		name    string
		bucket  string
		params  Params
		wantErr string
	}{
		{name: "inline image", params: Params{ImagePath: inline}},
		{name: "inline batch", params: Params{ImagePaths: []string{inline, inline}}},
		{name: "s3 key", bucket: "uploads", params: Params{ImageKeys: []string{"lists/monday.jpg"}}},
		{name: "no image", wantErr: "no image provided"},
		{name: "bad base64", params: Params{ImagePath: "%%%"}, wantErr: "image 0"},
		{name: "s3 key without bucket", params: Params{ImageKeys: []string{"lists/monday.jpg"}}, wantErr: "IMAGE_S3_BUCKET"},
		{name: "missing s3 key", bucket: "uploads", params: Params{ImageKeys: []string{"nope.jpg"}}, wantErr: "s3://uploads/nope.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newHandler(tt.bucket).handle(context.Background(), tt.params)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, res.IsList())

			items, err := res.Text.GroceryItems()
			require.NoError(t, err)
			assert.NotEmpty(t, items)
		})
	}
}

func TestHandle_UpstreamFailureIsGeneric(t *testing.T) {
	h := newHandler("")
	h.transcriber = failingTranscriber{}

	_, err := h.handle(context.Background(), Params{ImagePath: base64.StdEncoding.EncodeToString([]byte("x"))})
	require.Error(t, err)
	assert.Equal(t, "An error occurred while processing the image.", err.Error())
}
