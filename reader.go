package r12

import (
	"bytes"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// Response is one framed (or timed out) controller reply.
type Response struct {
	// Raw is the received bytes with surrounding whitespace and prompt removed.
	Raw []byte
	// Text is Raw decoded as Latin-1.
	Text string
	// Framed is false when the read hit its timeout first. That is not an
	// error; Text then holds whatever arrived.
	Framed bool
	// Terminator is the sentinel or prompt that completed the response.
	Terminator string
	Elapsed    time.Duration
}

// ResponseReader polls a transport until its framing policy reports a
// complete response or the timeout elapses.
type ResponseReader struct {
	policy FramingPolicy
	poll   time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewResponseReader returns a reader using policy and poll interval. Nil or
// non-positive values select the defaults.
func NewResponseReader(policy FramingPolicy, poll time.Duration) *ResponseReader {
	if policy == nil {
		policy = SentinelWordPolicy{}
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &ResponseReader{
		policy: policy,
		poll:   poll,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Policy returns the framing policy in use.
func (r *ResponseReader) Policy() FramingPolicy { return r.policy }

// PollInterval returns the delay between transport polls.
func (r *ResponseReader) PollInterval() time.Duration { return r.poll }

// ReadResponse waits one poll interval, then accumulates everything the
// transport has waiting, re-evaluating the framing policy over the whole
// buffer after every poll. An unframed read returns after timeout, and never
// more than one poll interval past it.
func (r *ResponseReader) ReadResponse(t Transport, timeout time.Duration) (*Response, error) {
	start := r.now()
	deadline := start.Add(timeout)

	r.sleep(min(r.poll, max(timeout, 0)))

	var raw []byte
	for {
		chunk, err := readAvailable(t)
		if err != nil {
			return nil, err
		}
		raw = append(raw, chunk...)

		text := decodeLatin1(raw)
		if term, ok := r.policy.Complete(text); ok {
			return finish(raw, text, true, term, r.now().Sub(start)), nil
		}

		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			return finish(raw, text, false, "", r.now().Sub(start)), nil
		}
		r.sleep(min(r.poll, remaining))
	}
}

func finish(raw []byte, text string, framed bool, term string, elapsed time.Duration) *Response {
	return &Response{
		Raw:        bytes.Trim(raw, trimSet),
		Text:       strings.Trim(text, trimSet),
		Framed:     framed,
		Terminator: term,
		Elapsed:    elapsed,
	}
}

// decodeLatin1 maps every byte to a code point, so any input decodes.
func decodeLatin1(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
