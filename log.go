// log.go - package-level diagnostic logging.
//
// Grounded on audio_chip.go's HandleRegisterWrite, which logs unrecognised
// register writes with the bare standard library logger rather than a
// structured logging dependency:
//
//	log.Printf("invalid register address: 0x%X", addr)
//
// wavemix keeps that posture: a package-level *log.Logger a host can
// redirect or silence, used only for conditions spec.md treats as
// diagnostics, never for conditions it treats as audio behaviour (those
// never log — see SPEC_FULL.md §10.1).

package wavemix

import (
	"log"
	"os"
)

// Logger receives wavemix's non-fatal diagnostics. Replace it (or point it at
// io.Discard) to silence or redirect; it defaults to the standard logger.
var Logger = log.New(os.Stderr, "wavemix: ", log.LstdFlags)

func logf(format string, args ...any) {
	Logger.Printf(format, args...)
}
