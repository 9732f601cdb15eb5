package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/textract"
	"github.com/aws/aws-sdk-go/service/textract/textractiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type MockTextract struct {
	textractiface.TextractAPI
	mock.Mock
}

func (m *MockTextract) DetectDocumentTextWithContext(ctx aws.Context, in *textract.DetectDocumentTextInput, _ ...request.Option) (*textract.DetectDocumentTextOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*textract.DetectDocumentTextOutput), args.Error(1)
}

func block(kind, text string, conf float64) *textract.Block {
	return &textract.Block{BlockType: aws.String(kind), Text: aws.String(text), Confidence: aws.Float64(conf)}
}

func TestTextractDetector_KeepsLines(t *testing.T) {
	api := new(MockTextract)
	api.On("DetectDocumentTextWithContext", mock.Anything, mock.MatchedBy(func(in *textract.DetectDocumentTextInput) bool {
		return string(in.Document.Bytes) == "img"
	})).Return(&textract.DetectDocumentTextOutput{Blocks: []*textract.Block{
		{BlockType: aws.String(textract.BlockTypePage)},
		block(textract.BlockTypeLine, "PASSPORT", 99.1),
		block(textract.BlockTypeWord, "PASSPORT", 99.1),
		block(textract.BlockTypeLine, "P<GBRSMITH<<JOHN<<<<<<<<<<<<<<<<<<<<<<<<<<<", 95.5),
	}}, nil)

	d := &TextractDetector{client: api}
	lines, err := d.DetectText(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, []usecase.TextLine{
		{Text: "PASSPORT", Confidence: 99.1},
		{Text: "P<GBRSMITH<<JOHN<<<<<<<<<<<<<<<<<<<<<<<<<<<", Confidence: 95.5},
	}, lines)
	api.AssertExpectations(t)
}

func TestTextractDetector_Error(t *testing.T) {
	api := new(MockTextract)
	api.On("DetectDocumentTextWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("InvalidImageFormatException"))

	d := &TextractDetector{client: api}
	_, err := d.DetectText(context.Background(), []byte("img"))
	assert.ErrorContains(t, err, "InvalidImageFormatException")
}
