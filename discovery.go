package r12

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.bug.st/serial/enumerator"

	"github.com/allbin/go-r12/logger"
)

// Identifier reports whether a USB device with the given vendor and product
// IDs is attached.
type Identifier func(vendorID, productID uint16) (bool, error)

// Expander lists candidate device paths for a pattern.
type Expander func(pattern string) ([]string, error)

// USBAttached checks the USB serial adapters known to the OS enumerator.
func USBAttached(vendorID, productID uint16) (bool, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return false, fmt.Errorf("enumerate serial ports: %w", err)
	}
	vid := fmt.Sprintf("%04x", vendorID)
	pid := fmt.Sprintf("%04x", productID)
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, vid) && strings.EqualFold(p.PID, pid) {
			return true, nil
		}
	}
	return false, nil
}

// Prober locates the controller's serial endpoint. It first checks that the
// expected USB adapter is attached, then probes every path matching Glob in
// directory order and returns the first whose reply contains Expect.
type Prober struct {
	Glob      string
	Request   string
	Expect    string
	VendorID  uint16
	ProductID uint16
	Settle    time.Duration
	Line      LineConfig

	Open     Opener
	Identify Identifier
	Expand   Expander
	Sleep    func(time.Duration)
	Log      logger.Logger
}

// NewProber returns a Prober with the controller defaults.
func NewProber(open Opener) *Prober {
	return &Prober{
		Glob:      DefaultPortGlob,
		Request:   DefaultProbeRequest,
		Expect:    DefaultProbeResponse,
		VendorID:  DefaultVendorID,
		ProductID: DefaultProductID,
		Settle:    DefaultProbeSettle,
		Line:      ControllerLine,
		Open:      open,
		Identify:  USBAttached,
		Expand:    GlobUnsorted,
		Sleep:     time.Sleep,
		Log:       logger.GetLogger(),
	}
}

// Search returns the responding endpoint. It returns "" and a nil error when
// the adapter is absent or no path matches the glob, and ErrNoResponse when
// candidates exist but none answered.
func (p *Prober) Search() (string, error) {
	attached, err := p.Identify(p.VendorID, p.ProductID)
	if err != nil {
		return "", err
	}
	if !attached {
		p.Log.Debug("usb adapter not attached",
			"vendor_id", fmt.Sprintf("%04x", p.VendorID),
			"product_id", fmt.Sprintf("%04x", p.ProductID))
		return "", nil
	}

	candidates, err := p.Expand(p.Glob)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p.Glob, err)
	}
	if len(candidates) == 0 {
		p.Log.Debug("no candidate ports", "glob", p.Glob)
		return "", nil
	}

	for _, path := range candidates {
		ok, err := p.Probe(path)
		if err != nil {
			return "", err
		}
		if ok {
			return path, nil
		}
	}
	return "", ErrNoResponse
}

// Probe opens path, sends the request and reports whether the reply contains
// the expected text. The port is always closed again.
func (p *Prober) Probe(path string) (matched bool, err error) {
	t, err := p.Open(path, p.Line)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			p.Log.Debug("probe close failed", "path", path, "error", cerr)
		}
	}()
	if !t.IsOpen() {
		return false, fmt.Errorf("probe %s: %w", path, ErrOpenFailed)
	}

	if _, err := t.Write([]byte(p.Request)); err != nil {
		return false, fmt.Errorf("probe %s: write: %w", path, err)
	}
	p.Sleep(p.Settle)

	raw, err := readAvailable(t)
	if err != nil {
		return false, fmt.Errorf("probe %s: read: %w", path, err)
	}
	reply := decodeLatin1(raw)
	matched = strings.Contains(reply, p.Expect)
	p.Log.Debug("probe", "path", path, "reply", reply, "matched", matched)
	return matched, nil
}

// GlobUnsorted is filepath.Glob for a pattern whose directory part is literal,
// but it keeps directory read order instead of sorting the matches.
func GlobUnsorted(pattern string) ([]string, error) {
	dir, file := filepath.Split(pattern)
	if hasMeta(dir) {
		return filepath.Glob(pattern)
	}
	if _, err := filepath.Match(file, ""); err != nil {
		return nil, err
	}
	if !hasMeta(file) {
		if _, err := os.Lstat(pattern); err != nil {
			return nil, nil
		}
		return []string{pattern}, nil
	}

	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	d, err := os.Open(readDir)
	if err != nil {
		return nil, nil
	}
	defer d.Close()
	names, _ := d.Readdirnames(-1)

	var matches []string
	for _, name := range names {
		if ok, _ := filepath.Match(file, name); ok {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	return matches, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[\`)
}
