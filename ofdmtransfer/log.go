package ofdmtransfer

import "log"

// verboseLogf mirrors the original's "if (verbose) fprintf(stderr, ...)"
// gating: logging stays off the hot path unless the caller asked for it.
func (t *Transfer) verboseLogf(format string, args ...interface{}) {
	if !t.params.Verbose {
		return
	}
	log.Printf("ofdm-transfer: "+format, args...)
}

func errorLogf(format string, args ...interface{}) {
	log.Printf("ofdm-transfer: error: "+format, args...)
}
