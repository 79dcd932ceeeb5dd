package catalog

import (
	"errors"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// Form validation messages, in the order fields are checked.
var draftMessages = []struct{ field, message string }{
	{"name", "Product name is required"},
	{"description", "Product description is required"},
	{"price", "Product price is required"},
	{"sizes", "At least one size is required"},
	{"colors", "At least one color is required"},
}

const (
	msgImageRequired = "Product image is required"
	msgNotAnImage    = "File must be an image"
	msgImageTooLarge = "Image size must be less than 5MB"
)

// ValidateDraft checks a product form before anything is sent. image may
// be nil; it is mandatory when creating.
func ValidateDraft(draft domain.ProductDraft, image *domain.Attachment, creating bool) error {
	fields := map[string]string{}
	message := ""

	if err := validator.Validate(draft); err != nil {
		var valErr *validator.ValidationError
		if !errors.As(err, &valErr) {
			return apperrors.Validation(err.Error())
		}
		failed := valErr.Fields()
		for _, m := range draftMessages {
			if _, ok := failed[m.field]; !ok {
				continue
			}
			fields[m.field] = m.message
			if message == "" {
				message = m.message
			}
		}
		// Constraints outside the friendly set, such as a negative price.
		for f, msg := range failed {
			if _, ok := fields[f]; !ok {
				fields[f] = msg
				if message == "" {
					message = f + " " + msg
				}
			}
		}
	}

	if imgMsg := imageProblem(image, creating); imgMsg != "" {
		fields["image"] = imgMsg
		if message == "" {
			message = imgMsg
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return apperrors.ValidationFields(message, fields)
}

func imageProblem(image *domain.Attachment, creating bool) string {
	switch {
	case image == nil:
		if creating {
			return msgImageRequired
		}
		return ""
	case !image.IsImage():
		return msgNotAnImage
	case image.Size > domain.MaxImageSize:
		return msgImageTooLarge
	default:
		return ""
	}
}
