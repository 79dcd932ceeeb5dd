package domain

import (
	"mime"
	"strings"
)

// MaxImageSize is the largest accepted product image (5 MiB).
const MaxImageSize int64 = 5 * 1024 * 1024

// Product represents a product in the catalog.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// HasImage reports whether the product currently has an image attached.
func (p Product) HasImage() bool {
	return p.ImageURL != ""
}

// ProductDraft holds the editable fields of a product form.
type ProductDraft struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Sizes       []string `json:"sizes" validate:"required,min=1,dive,required"`
	Colors      []string `json:"colors" validate:"required,min=1,dive,required"`
}

// DraftFromProduct seeds a draft with the current values of p.
func DraftFromProduct(p *Product) ProductDraft {
	if p == nil {
		return ProductDraft{}
	}
	price := p.Price
	return ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       &price,
		Sizes:       append([]string(nil), p.Sizes...),
		Colors:      append([]string(nil), p.Colors...),
	}
}

// ParseList splits comma-separated form input into an ordered set:
// entries are trimmed, empties dropped and later duplicates removed.
func ParseList(text string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Attachment is a binary file picked in the product form.
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// NewAttachment builds an attachment from raw bytes. When contentType is
// empty it is inferred from the file extension.
func NewAttachment(fileName, contentType string, data []byte) *Attachment {
	if contentType == "" {
		if i := strings.LastIndex(fileName, "."); i >= 0 {
			contentType = mime.TypeByExtension(fileName[i:])
		}
	}
	return &Attachment{
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
}

// IsImage reports whether the attachment has an image media type.
func (a *Attachment) IsImage() bool {
	mediaType, _, err := mime.ParseMediaType(a.ContentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
