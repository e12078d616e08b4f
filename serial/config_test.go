package serial

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}
	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}
	if config.StopBits != 1 {
		t.Errorf("Expected StopBits 1, got %d", config.StopBits)
	}
	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}
	if config.ReadTimeoutTenths != 0 {
		t.Errorf("Expected non-blocking reads by default, got VTIME %d", config.ReadTimeoutTenths)
	}
}

func TestWithReadTimeout(t *testing.T) {
	tests := []struct {
		name    string
		tenths  int
		wantErr bool
	}{
		{"non-blocking", 0, false},
		{"one second", 10, false},
		{"max", 255, false},
		{"exceeds max", 256, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := WithReadTimeout(tt.tenths)(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithReadTimeout(%d) error = %v, wantErr %v", tt.tenths, err, tt.wantErr)
			}
			if err == nil && config.ReadTimeoutTenths != tt.tenths {
				t.Errorf("ReadTimeoutTenths = %d, want %d", config.ReadTimeoutTenths, tt.tenths)
			}
		})
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()
	opts := []Option{
		WithBaudRate(19200),
		WithDataBits(8),
		WithStopBits(2),
		WithParity(ParityNone),
		WithExclusive(),
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			t.Fatalf("option failed: %v", err)
		}
	}

	if config.BaudRate != 19200 {
		t.Errorf("Expected BaudRate 19200, got %d", config.BaudRate)
	}
	if config.StopBits != 2 {
		t.Errorf("Expected StopBits 2, got %d", config.StopBits)
	}
	if !config.Exclusive {
		t.Errorf("Expected exclusive access")
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"baud rate", WithBaudRate(123456), ErrInvalidBaudRate},
		{"data bits", WithDataBits(9), ErrInvalidConfig},
		{"stop bits", WithStopBits(3), ErrInvalidConfig},
		{"parity", WithParity(Parity(7)), ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if err := tt.opt(&config); err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParityString(t *testing.T) {
	if got := ParityNone.String() + ParityOdd.String() + ParityEven.String(); got != "NOE" {
		t.Errorf("Parity strings = %q, want NOE", got)
	}
}
