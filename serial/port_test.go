package serial

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{19200, false},
		{115200, false},
		{9600, false},
		{123456, true},
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if err != ErrInvalidBaudRate {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
		}
		if result == 0 {
			t.Errorf("Got zero result for valid baud rate %d", test.input)
		}
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent")
	if err == nil {
		t.Fatal("Expected error when opening non-existent device")
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestOpenInvalidOption(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(1))
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

// openPTY returns the master fd and the slave path of a fresh pseudo-terminal.
func openPTY(t *testing.T) (int, string) {
	t.Helper()

	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("pseudo-terminals not available: %v", err)
	}
	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		unix.Close(master)
		t.Skipf("unlockpt failed: %v", err)
	}
	n, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	if err != nil {
		unix.Close(master)
		t.Skipf("ptsname failed: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func TestPortOverPTY(t *testing.T) {
	master, slave := openPTY(t)

	p, err := Open(slave, WithBaudRate(19200), WithStopBits(2))
	if err != nil {
		t.Skipf("cannot configure pty slave: %v", err)
	}
	defer p.Close()

	if !p.IsOpen() {
		t.Fatal("port should report open")
	}
	if p.Path() != slave {
		t.Errorf("Path() = %q, want %q", p.Path(), slave)
	}

	// Nothing buffered yet: Read must not block.
	buf := make([]byte, 16)
	start := time.Now()
	n, err := p.Read(buf)
	if err != nil || n != 0 {
		t.Errorf("empty Read = %d, %v; want 0, nil", n, err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("empty Read blocked for %v", time.Since(start))
	}

	if _, err := unix.Write(master, []byte("ROBOFORTH OK>")); err != nil {
		t.Fatalf("master write: %v", err)
	}

	var waiting int
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		waiting, err = p.InWaiting()
		if err != nil {
			t.Fatalf("InWaiting: %v", err)
		}
		if waiting == 13 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if waiting != 13 {
		t.Fatalf("InWaiting = %d, want 13", waiting)
	}

	buf = make([]byte, waiting)
	n, err = p.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "ROBOFORTH OK>" {
		t.Errorf("Read = %q", buf[:n])
	}

	if _, err := p.Write([]byte("WHERE\r\n")); err != nil {
		t.Errorf("Write: %v", err)
	}
}

func TestClosedPort(t *testing.T) {
	_, slave := openPTY(t)

	p, err := Open(slave)
	if err != nil {
		t.Skipf("cannot configure pty slave: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if p.IsOpen() {
		t.Error("closed port reports open")
	}
	if err := p.Close(); err != ErrPortClosed {
		t.Errorf("second Close = %v, want ErrPortClosed", err)
	}
	if _, err := p.Read(make([]byte, 1)); err != ErrPortClosed {
		t.Errorf("Read after close = %v, want ErrPortClosed", err)
	}
	if _, err := p.Write([]byte("x")); err != ErrPortClosed {
		t.Errorf("Write after close = %v, want ErrPortClosed", err)
	}
	if _, err := p.InWaiting(); err != ErrPortClosed {
		t.Errorf("InWaiting after close = %v, want ErrPortClosed", err)
	}
}
