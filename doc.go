// Package r12 drives an ST Robotics R12 arm controller over its USB serial
// link.
//
// The controller speaks ROBOFORTH: commands are upper-case words terminated by
// CRLF, and replies end with a sentinel word (OK or ABORTED) followed by a '>'
// prompt. A Session owns the link:
//
//	s, err := r12.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoint, err := s.Connect("") // discover
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Disconnect()
//
//	resp, err := s.Exchange("where", r12.ShortReadTimeout)
//	fmt.Println(resp.Text)
//
// # Discovery
//
// Connect with an empty path checks that the FTDI adapter (0403:6001) is
// attached, then writes "ROBOFORTH\r\n" to every /dev/ttyUSB* candidate in
// directory order and keeps the first that echoes ROBOFORTH. See Prober.
//
// # Framing
//
// Reads poll the transport every 100ms and stop as soon as the configured
// FramingPolicy recognises a complete reply. A read that runs out of time
// returns what arrived with Response.Framed false; it is not an error.
//
// # Drivers
//
// Two transports are provided: "native" (termios, package serial) and "bugst"
// (go.bug.st/serial). Any Opener can be injected with WithOpener; package
// simulator provides one for tests.
package r12
