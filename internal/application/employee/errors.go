package employee

import (
	"errors"
	"fmt"
)

var (
	ErrUserInput         = errors.New("invalid import input")
	ErrNoFile            = fmt.Errorf("%w: please upload a file", ErrUserInput)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file extension, use .csv or .xlsx", ErrUserInput)
	ErrUnreadableUpload  = fmt.Errorf("%w: upload could not be parsed", ErrUserInput)
	ErrNoValidRows       = fmt.Errorf("%w: no valid rows found", ErrUserInput)

	ErrDependencyUnavailable  = errors.New("optional dependency unavailable")
	ErrSpreadsheetUnsupported = fmt.Errorf("%w: .xlsx support is not available in this build, upload a .csv file instead", ErrDependencyUnavailable)

	ErrScheduleImport  = errors.New("failed to schedule import")
	ErrInvalidImportID = errors.New("invalid import id")
	ErrImportNotFound  = errors.New("import not found")
	ErrGetImportStatus = errors.New("failed to get import status")
)
