// Package utils provides common utility functions for the merge service.
// It includes helper functions for converting driver-specific scan values
// (int64, []byte, ...) into plain Go types when printing or comparing rows.
package utils
