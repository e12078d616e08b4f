package r12

import (
	"fmt"
	"time"

	"github.com/allbin/go-r12/serial"
)

// LineConfig is the serial framing of the controller link.
type LineConfig struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   serial.Parity
}

// String renders the line as e.g. "19200 8N2".
func (l LineConfig) String() string {
	return fmt.Sprintf("%d %d%s%d", l.BaudRate, l.DataBits, l.Parity, l.StopBits)
}

// ControllerLine is the fixed line configuration of the R12 controller.
var ControllerLine = LineConfig{
	BaudRate: 19200,
	DataBits: 8,
	StopBits: 2,
	Parity:   serial.ParityNone,
}

// Discovery defaults. The probe is answered by the ROBOFORTH boot banner.
const (
	DefaultPortGlob      = "/dev/ttyUSB*"
	DefaultProbeRequest  = "ROBOFORTH\r\n"
	DefaultProbeResponse = "ROBOFORTH"

	// FTDI FT232R, the controller's USB-to-UART bridge.
	DefaultVendorID  uint16 = 0x0403
	DefaultProductID uint16 = 0x6001

	DefaultProbeSettle = 100 * time.Millisecond
)

// Read defaults. DefaultReadTimeout is long enough for a full calibration
// cycle; ShortReadTimeout suits diagnostic commands.
const (
	DefaultReadTimeout  = 30 * time.Second
	ShortReadTimeout    = 1500 * time.Millisecond
	DefaultPollInterval = 100 * time.Millisecond
)

// Wire tokens.
const (
	SentinelOK      = "OK"
	SentinelAborted = "ABORTED"
	Prompt          = '>'

	lineEnding = "\r\n"
)

// DefaultSentinels is the ordered sentinel set checked by SentinelWordPolicy.
var DefaultSentinels = []string{SentinelOK, SentinelAborted}
