package simulator

import "strings"

// Banner is the controller's reply to the ROBOFORTH probe word.
const Banner = "ROBOFORTH V17 R12 (simulated)"

// words the simulated controller accepts.
var knownWords = map[string]bool{
	"ROBOFORTH":   true,
	"START":       true,
	"CALIBRATE":   true,
	"HOME":        true,
	"READY":       true,
	"WHERE":       true,
	"ENERGIZE":    true,
	"DE-ENERGIZE": true,
	"SPEED":       true,
	"ACCEL":       true,
	"MOVE":        true,
	"TELL":        true,
	"WAIST":       true,
	"SHOULDER":    true,
	"ELBOW":       true,
	"HAND":        true,
	"WRIST":       true,
	"GRIP":        true,
	"UNGRIP":      true,
	"CARTESIAN":   true,
	"JOINT":       true,
	"COMPUTE":     true,
	"!":           true,
}

// RoboForth echoes each command and closes the reply with OK and a prompt.
// STOP, and any line containing a word the controller does not know, end in
// ABORTED instead. Numbers are accepted.
func RoboForth() Responder {
	return func(line string) string {
		cmd := strings.TrimSpace(line)
		switch {
		case cmd == "":
			return "\r\n>"
		case cmd == "ROBOFORTH":
			return cmd + "\r\n" + Banner + "\r\nOK\r\n>"
		case cmd == "STOP":
			return cmd + "\r\nABORTED\r\n>"
		case cmd == "WHERE":
			return cmd + "\r\n  WAIST SHOULDER ELBOW HAND WRIST\r\n      0        0     0    0     0 OK\r\n>"
		}
		for _, w := range strings.Fields(cmd) {
			if !knownWords[w] && !isNumber(w) {
				return cmd + "\r\n" + w + " ? ABORTED\r\n>"
			}
		}
		return cmd + " OK\r\n>"
	}
}

// Prompt replies "<line> OK>" with no line break, like older firmware.
func Prompt() Responder {
	return func(line string) string {
		return strings.TrimSpace(line) + " OK>"
	}
}

// Silent never replies.
func Silent() Responder {
	return func(string) string { return "" }
}

// Script replies from a fixed table and stays silent for anything else.
func Script(replies map[string]string) Responder {
	return func(line string) string {
		return replies[strings.TrimSpace(line)]
	}
}

func isNumber(w string) bool {
	if w == "" {
		return false
	}
	if w[0] == '-' {
		w = w[1:]
	}
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
