package r12

import (
	"fmt"
	"time"

	"github.com/allbin/go-r12/logger"
)

type options struct {
	opener       Opener
	identify     Identifier
	expand       Expander
	glob         string
	probeRequest string
	probeExpect  string
	vendorID     uint16
	productID    uint16
	settle       time.Duration
	readTimeout  time.Duration
	pollInterval time.Duration
	framing      FramingPolicy
	log          logger.Logger
}

func defaultOptions() options {
	return options{
		opener:       OpenNative,
		identify:     USBAttached,
		expand:       GlobUnsorted,
		glob:         DefaultPortGlob,
		probeRequest: DefaultProbeRequest,
		probeExpect:  DefaultProbeResponse,
		vendorID:     DefaultVendorID,
		productID:    DefaultProductID,
		settle:       DefaultProbeSettle,
		readTimeout:  DefaultReadTimeout,
		pollInterval: DefaultPollInterval,
		framing:      SentinelWordPolicy{},
	}
}

// Option configures a Session.
type Option func(*options) error

// WithDriver selects the transport driver by name.
func WithDriver(name string) Option {
	return func(o *options) error {
		open, err := OpenerFor(name)
		if err != nil {
			return err
		}
		o.opener = open
		return nil
	}
}

// WithOpener replaces the transport opener.
func WithOpener(open Opener) Option {
	return func(o *options) error {
		if open == nil {
			return fmt.Errorf("%w: nil opener", ErrInvalidOption)
		}
		o.opener = open
		return nil
	}
}

// WithIdentifier replaces the USB presence check used by discovery.
func WithIdentifier(id Identifier) Option {
	return func(o *options) error {
		if id == nil {
			return fmt.Errorf("%w: nil identifier", ErrInvalidOption)
		}
		o.identify = id
		return nil
	}
}

// WithExpander replaces the candidate lister used by discovery.
func WithExpander(expand Expander) Option {
	return func(o *options) error {
		if expand == nil {
			return fmt.Errorf("%w: nil expander", ErrInvalidOption)
		}
		o.expand = expand
		return nil
	}
}

// WithPortGlob sets the discovery candidate pattern.
func WithPortGlob(pattern string) Option {
	return func(o *options) error {
		if pattern == "" {
			return fmt.Errorf("%w: empty port glob", ErrInvalidOption)
		}
		o.glob = pattern
		return nil
	}
}

// WithProbe sets the discovery request and the text expected in the reply.
func WithProbe(request, expect string) Option {
	return func(o *options) error {
		if request == "" || expect == "" {
			return fmt.Errorf("%w: empty probe", ErrInvalidOption)
		}
		o.probeRequest = request
		o.probeExpect = expect
		return nil
	}
}

// WithUSBIdentity sets the adapter vendor and product IDs.
func WithUSBIdentity(vendorID, productID uint16) Option {
	return func(o *options) error {
		o.vendorID = vendorID
		o.productID = productID
		return nil
	}
}

// WithProbeSettle sets how long a probe waits before reading the reply.
func WithProbeSettle(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("%w: negative probe settle", ErrInvalidOption)
		}
		o.settle = d
		return nil
	}
}

// WithReadTimeout sets the timeout used by reads given a non-positive timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("%w: read timeout must be positive", ErrInvalidOption)
		}
		o.readTimeout = d
		return nil
	}
}

// WithPollInterval sets the delay between transport polls while reading.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("%w: poll interval must be positive", ErrInvalidOption)
		}
		o.pollInterval = d
		return nil
	}
}

// WithFramingPolicy sets the response framing policy.
func WithFramingPolicy(p FramingPolicy) Option {
	return func(o *options) error {
		if p == nil {
			return fmt.Errorf("%w: nil framing policy", ErrInvalidOption)
		}
		o.framing = p
		return nil
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) error {
		o.log = l
		return nil
	}
}
