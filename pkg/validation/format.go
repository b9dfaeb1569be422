// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iwvelando/price-sensitivity/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateExportPath checks that a curve export target is a parquet file.
// An empty path disables export and is accepted.
func ValidateExportPath(path string) error {
	if path == "" {
		return nil
	}
	if !strings.EqualFold(filepath.Ext(path), constants.ExportExtension) {
		return fmt.Errorf("expected export path ending in %s, got %s", constants.ExportExtension, path)
	}
	return nil
}
