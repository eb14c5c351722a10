package record

import (
	"strings"

	"github.com/plainq/servekit/errkit"
	"github.com/plainq/servekit/idkit"
)

// validateRecordID validates given record identifier.
func validateRecordID(recordID string) error {
	if recordID == "" {
		return errkit.ErrInvalidID
	}

	if err := idkit.ValidateXID(strings.ToLower(recordID)); err != nil {
		return errkit.ErrInvalidID
	}

	return nil
}
