package serial

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSysfsFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		expected string
		setup    func(string) error
	}{
		{
			name:     "normal file",
			expected: "1234",
			setup: func(path string) error {
				return os.WriteFile(path, []byte("1234\n"), 0644)
			},
		},
		{
			name:     "file with spaces",
			expected: "test value",
			setup: func(path string) error {
				return os.WriteFile(path, []byte("  test value  \n"), 0644)
			},
		},
		{
			name:     "nonexistent file",
			expected: "",
			setup:    func(path string) error { return nil },
		},
		{
			name:     "empty file",
			expected: "",
			setup: func(path string) error {
				return os.WriteFile(path, []byte(""), 0644)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFile := filepath.Join(tmpDir, tt.name)
			if err := tt.setup(testFile); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}

			if result := readSysfsFile(testFile); result != tt.expected {
				t.Errorf("readSysfsFile() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

// mockSysfs builds class/tty/<name>/device -> devices/usb1/1-1/1-1:1.0/<name>
// under a temporary root and points sysfsRoot at it.
func mockSysfs(t *testing.T, name string, attrs map[string]string) {
	t.Helper()

	root := t.TempDir()
	devicePath := filepath.Join(root, "devices", "usb1", "1-1")
	interfacePath := filepath.Join(devicePath, "1-1:1.0")
	ttyPath := filepath.Join(interfacePath, name)
	classPath := filepath.Join(root, "class", "tty", name)

	for _, dir := range []string{ttyPath, classPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for file, content := range attrs {
		if err := os.WriteFile(filepath.Join(devicePath, file), []byte(content+"\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	if err := os.WriteFile(filepath.Join(interfacePath, "bInterfaceNumber"), []byte("00\n"), 0644); err != nil {
		t.Fatalf("write interface number: %v", err)
	}
	if err := os.Symlink(ttyPath, filepath.Join(classPath, "device")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	old := sysfsRoot
	sysfsRoot = root
	t.Cleanup(func() { sysfsRoot = old })
}

func TestEnrichUSBInfo(t *testing.T) {
	mockSysfs(t, "ttyUSB0", map[string]string{
		"idVendor":     "0403",
		"idProduct":    "6001",
		"serial":       "A600KZ1X",
		"manufacturer": "FTDI",
		"product":      "FT232R USB UART",
		"busnum":       "5",
		"devnum":       "7",
	})

	info := &PortInfo{Name: "ttyUSB0", Path: "/dev/ttyUSB0"}
	enrichUSBInfo(info)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"VendorID", info.VendorID, "0403"},
		{"ProductID", info.ProductID, "6001"},
		{"SerialNumber", info.SerialNumber, "A600KZ1X"},
		{"InterfaceNumber", info.InterfaceNumber, "00"},
		{"BusNumber", info.BusNumber, "5"},
		{"DeviceNumber", info.DeviceNumber, "7"},
		{"Manufacturer", info.Manufacturer, "FTDI"},
		{"Product", info.Product, "FT232R USB UART"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s = %q, expected %q", tt.name, tt.got, tt.expected)
		}
	}
	if !info.IsUSB() {
		t.Error("IsUSB() = false after enrichment")
	}
}

func TestEnrichUSBInfoGracefulFailure(t *testing.T) {
	old := sysfsRoot
	sysfsRoot = t.TempDir()
	defer func() { sysfsRoot = old }()

	info := &PortInfo{Name: "ttyUSB999", Path: "/dev/ttyUSB999"}
	enrichUSBInfo(info)

	if info.VendorID != "" || info.ProductID != "" || info.SerialNumber != "" {
		t.Errorf("expected empty USB fields, got %+v", info)
	}
}

func TestUSBDevicePath(t *testing.T) {
	tests := []struct {
		bus      string
		device   string
		expected string
	}{
		{"5", "7", "005/007"},
		{"1", "2", "001/002"},
		{"123", "456", "123/456"},
		{"1", "10", "001/010"},
	}

	for _, tt := range tests {
		if got := usbDevicePath(tt.bus, tt.device); got != tt.expected {
			t.Errorf("usbDevicePath(%q, %q) = %q, expected %q", tt.bus, tt.device, got, tt.expected)
		}
	}
}

func TestResetUSBDeviceBySerialNotFound(t *testing.T) {
	err := ResetUSBDeviceBySerial("NONEXISTENT_SERIAL")
	if err == nil {
		t.Fatal("Expected error for nonexistent serial number")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}

func TestResetUSBDeviceNotUSB(t *testing.T) {
	if err := ResetUSBDevice("/dev/null"); err != ErrUSBInfoNotAvailable {
		t.Errorf("ResetUSBDevice(/dev/null) = %v, want ErrUSBInfoNotAvailable", err)
	}
}
