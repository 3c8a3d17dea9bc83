// Package grounding turns uploaded files into textual context and wraps
// questions with the rules that keep the model inside that context.
package grounding

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/iamvkosarev/groq-chat-bot/internal/model"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrDecode          = errors.New("failed to decode file")
)

// Decode builds an immutable GroundingDocument from raw upload bytes. Plain
// text passes through verbatim; csv is rendered as a flat aligned table
// (header plus row values) so the model reads it like a human would. The
// declared media type is checked before the file name, same as the upload
// boundary declares it.
func Decode(name, mediaType string, data []byte) (model.GroundingDocument, error) {
	switch {
	case mediaType == "text/plain":
		if !utf8.Valid(data) {
			return model.GroundingDocument{}, fmt.Errorf("%w: content is not valid UTF-8", ErrDecode)
		}
		return model.GroundingDocument{
			Name: name,
			Kind: model.DocumentKindPlainText,
			Raw:  data,
			Text: string(data),
		}, nil
	case mediaType == "text/csv" || strings.HasSuffix(strings.ToLower(name), ".csv"):
		if !utf8.Valid(data) {
			return model.GroundingDocument{}, fmt.Errorf("%w: content is not valid UTF-8", ErrDecode)
		}
		text, err := renderTable(data)
		if err != nil {
			return model.GroundingDocument{}, err
		}
		return model.GroundingDocument{
			Name: name,
			Kind: model.DocumentKindTabular,
			Raw:  data,
			Text: text,
		}, nil
	default:
		return model.GroundingDocument{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
}

func renderTable(data []byte) (string, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: csv file is empty", ErrDecode)
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, record := range records {
		fmt.Fprintln(w, strings.Join(record, "\t"))
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
