package console

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is returned for a command with missing or malformed arguments.
	ErrUsage = errors.New("usage")
	// ErrNothingToExport is returned by export on a page without a table.
	ErrNothingToExport = errors.New("nothing to export on this page")
)

func usage(syntax string) error {
	return fmt.Errorf("%w: %s", ErrUsage, syntax)
}
