package export

import (
	"fmt"
	"sync"

	clipboard "golang.design/x/clipboard"
)

// Maximum clipboard size in bytes (10MB) - helps avoid X11 BadLength errors on Linux
const maxClipboardSize = 10 * 1024 * 1024

var (
	clipOnce sync.Once
	clipErr  error
)

// CopyToClipboard puts text on the system clipboard
func CopyToClipboard(text string) error {
	clipOnce.Do(func() {
		clipErr = clipboard.Init()
	})
	if clipErr != nil {
		return fmt.Errorf("clipboard not available: %w", clipErr)
	}
	return safeClipboardWrite(clipboard.FmtText, []byte(text))
}

// safeClipboardWrite attempts to write data to clipboard with panic recovery.
// Returns an error if the write fails or data is too large.
func safeClipboardWrite(format clipboard.Format, data []byte) (err error) {
	if len(data) > maxClipboardSize {
		return fmt.Errorf("data too large for clipboard (%d bytes, max %d bytes / %.1f MB). Try a narrower filter",
			len(data), maxClipboardSize, float64(maxClipboardSize)/(1024*1024))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard write failed: %v", r)
		}
	}()

	clipboard.Write(format, data)
	return nil
}
