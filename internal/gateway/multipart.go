package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

// ProductForm is an encoded multipart product payload.
type ProductForm struct {
	body        []byte
	contentType string
}

// ContentType returns the multipart content type including the boundary.
func (f *ProductForm) ContentType() string { return f.contentType }

// Bytes returns the encoded body.
func (f *ProductForm) Bytes() []byte { return f.body }

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type formOptions struct {
	uploadPreset string
}

// FormOption adjusts how a ProductForm is encoded.
type FormOption func(*formOptions)

// WithUploadPreset names the object-storage preset the backend applies to
// the attached image. It is only sent alongside an image.
func WithUploadPreset(preset string) FormOption {
	return func(o *formOptions) {
		o.uploadPreset = preset
	}
}

// NewProductForm encodes draft as multipart form data. Sizes and colors
// are sent as JSON arrays in text fields. image is optional.
func NewProductForm(draft domain.ProductDraft, image *domain.Attachment, opts ...FormOption) (*ProductForm, error) {
	var o formOptions
	for _, opt := range opts {
		opt(&o)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	price := ""
	if draft.Price != nil {
		price = strconv.FormatFloat(*draft.Price, 'f', -1, 64)
	}
	sizes, err := jsonList(draft.Sizes)
	if err != nil {
		return nil, err
	}
	colors, err := jsonList(draft.Colors)
	if err != nil {
		return nil, err
	}

	fields := []struct{ name, value string }{
		{"name", draft.Name},
		{"description", draft.Description},
		{"price", price},
		{"sizes", sizes},
		{"colors", colors},
	}
	if image != nil && o.uploadPreset != "" {
		fields = append(fields, struct{ name, value string }{"upload_preset", o.uploadPreset})
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write %s field: %w", f.name, err)
		}
	}

	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(image.FileName)))
		contentType := image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, fmt.Errorf("write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return &ProductForm{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func jsonList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}
