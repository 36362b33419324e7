package utils

import (
	"log"
	"strings"
)

// LogEvent prints one structured line per state change. The message carries
// key=value pairs (booking_id, slot_id, status); never contact details or
// cancellation tokens.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s %s", strings.ToUpper(module), action, req, message)
}
