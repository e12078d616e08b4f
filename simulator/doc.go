// Package simulator emulates an R12 controller behind a serial port closely
// enough to exercise discovery, framing and the console without hardware.
//
// A Device consumes CRLF-terminated lines and queues replies produced by its
// Responder. Replies can be delayed by a number of polls and released in
// chunks, which models a slow controller trickling output over the link. A
// Bank maps device paths to Devices and counts opens.
package simulator
