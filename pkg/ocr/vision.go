package ocr

import (
	"context"
	"errors"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// Vision recognizes text with Google Cloud Vision document text detection.
type Vision struct {
	client *vision.ImageAnnotatorClient
}

// NewVision creates a Cloud Vision client from explicit service account
// credentials. Exactly one of credentialsJSON or credentialsFile is needed.
func NewVision(ctx context.Context, credentialsJSON []byte, credentialsFile string) (*Vision, error) {
	var opt option.ClientOption
	switch {
	case len(credentialsJSON) > 0:
		opt = option.WithCredentialsJSON(credentialsJSON)
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, errors.New("vision ocr: credentials_json or credentials_file is required")
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{client: client}, nil
}

func (v *Vision) Name() string { return "vision" }

func (v *Vision) Recognize(ctx context.Context, content []byte) (string, error) {
	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: content},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", ErrNoText
	}
	r := resp.GetResponses()[0]
	if e := r.GetError(); e != nil && e.GetCode() != 0 {
		return "", fmt.Errorf("vision annotate: %s", e.GetMessage())
	}
	text := cleanText(r.GetFullTextAnnotation().GetText())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Close releases the underlying gRPC connection.
func (v *Vision) Close() error {
	return v.client.Close()
}
