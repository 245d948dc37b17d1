package adapters

import (
	"bytes"
	"fmt"
	"os"
)

const redactedMarker = "[REDACTED]"

// FixLogFile replaces every occurrence of the literal "[REDACTED]"
// placeholder in path with target, after writing path+".bak" holding
// the untouched original (spec.md §6/§8 scenario 6). This is the
// offline counterpart to the placeholder a running scan writes into
// its own logs in place of the real target, for operators who want
// the real value back in a log they're archiving.
func FixLogFile(path, target string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}

	if err := os.WriteFile(path+".bak", original, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	fixed := bytes.ReplaceAll(original, []byte(redactedMarker), []byte(target))
	if err := os.WriteFile(path, fixed, 0o644); err != nil {
		return fmt.Errorf("write fixed log file: %w", err)
	}
	return nil
}
