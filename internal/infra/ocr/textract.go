package ocr

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/textract"
	"github.com/aws/aws-sdk-go/service/textract/textractiface"

	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

// TextractDetector runs synchronous DetectDocumentText on a single image and
// returns the LINE blocks in reading order.
type TextractDetector struct {
	client textractiface.TextractAPI
}

func NewTextractDetector(sess *session.Session) *TextractDetector {
	return &TextractDetector{client: textract.New(sess)}
}

func (d *TextractDetector) DetectText(ctx context.Context, image []byte) ([]usecase.TextLine, error) {
	out, err := d.client.DetectDocumentTextWithContext(ctx, &textract.DetectDocumentTextInput{
		Document: &textract.Document{Bytes: image},
	})
	if err != nil {
		return nil, fmt.Errorf("textract detect document text: %w", err)
	}

	lines := make([]usecase.TextLine, 0, len(out.Blocks))
	for _, b := range out.Blocks {
		if aws.StringValue(b.BlockType) != textract.BlockTypeLine {
			continue
		}
		lines = append(lines, usecase.TextLine{
			Text:       aws.StringValue(b.Text),
			Confidence: aws.Float64Value(b.Confidence),
		})
	}
	return lines, nil
}
