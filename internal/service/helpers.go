package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/luminalib/lumina-server/internal/errors"
	"github.com/luminalib/lumina-server/internal/store"
)

// bookLookupError maps store-level book lookup failures onto domain errors.
func bookLookupError(err error) error {
	if errors.Is(err, store.ErrBookNotFound) {
		return domainerrors.NotFound("book not found")
	}
	return fmt.Errorf("get book: %w", err)
}
