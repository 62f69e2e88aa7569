package binder

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

// DefaultMaxMemory caps the in-memory portion of a parsed multipart form;
// larger parts spill to temporary files.
const DefaultMaxMemory = 10 << 20 // 10 MB

// FormFile parses the multipart form and returns the header of the named
// file. Returns ErrMissingFile when the field is absent and ErrInvalidForm
// when the body is not a well-formed multipart form.
func FormFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
	}

	_, fh, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, field)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	return fh, nil
}
