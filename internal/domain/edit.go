package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// PreviewScheme prefixes preview references for attachments that only
// exist locally.
const PreviewScheme = "attachment://"

// PendingEdit is an in-progress product form. It is discarded on cancel
// or after a successful submit.
type PendingEdit struct {
	Draft      ProductDraft
	Attachment *Attachment
	Preview    string
	// Original is the product being edited, nil when creating.
	Original *Product
}

// NewPendingEdit starts a form for p, or an empty create form when p is nil.
func NewPendingEdit(p *Product) *PendingEdit {
	e := &PendingEdit{Draft: DraftFromProduct(p)}
	if p != nil {
		cp := *p
		e.Original = &cp
		e.Preview = p.ImageURL
	}
	return e
}

// IsCreate reports whether the form creates a new product.
func (e *PendingEdit) IsCreate() bool {
	return e.Original == nil
}

// Attach replaces the pending attachment and points the preview at it.
func (e *PendingEdit) Attach(a *Attachment) {
	e.Attachment = a
	if a == nil {
		return
	}
	e.Preview = fmt.Sprintf("%s%s/%s", PreviewScheme, uuid.New().String(), a.FileName)
}

// ClearImage drops the pending attachment and the preview.
func (e *PendingEdit) ClearImage() {
	e.Attachment = nil
	e.Preview = ""
}
