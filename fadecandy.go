package volumiwled

// This file contains an alternative output for strips attached to one or
// more fadecandy device(s) via an Open Pixel Control server such as fcserver.
//
// OPC has no notion of power or brightness so both are applied here by
// scaling the pixels of every frame before it is sent.

import (
	"net"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/kellydunn/go-opc"
)

// opcSender delivers encoded OPC messages to a server
type opcSender interface {
	Send(m *opc.Message) error
	Close() error
}

// opcConn writes go-opc messages to a TCP connection with a deadline on every
// write, a server that stops reading turns into an error rather than a stall
type opcConn struct {
	conn    net.Conn
	timeout time.Duration
}

func (oc *opcConn) Send(m *opc.Message) (errGo error) {
	if errGo = oc.conn.SetWriteDeadline(time.Now().Add(oc.timeout)); errGo != nil {
		return errGo
	}
	_, errGo = oc.conn.Write(m.ByteArray())
	return errGo
}

func (oc *opcConn) Close() error {
	return oc.conn.Close()
}

type FadeCandy struct {
	server  string
	channel uint8
	timeout time.Duration

	dial   func(server string, timeout time.Duration) (opcSender, error)
	client opcSender

	on         bool
	brightness int
	last       Frame
}

// NewFadeCandy creates a sink for the OPC server at server, for example
// "localhost:7890".  The connection is made lazily and remade after a failed
// send, both connecting and each send are abandoned after timeout.
func NewFadeCandy(server string, channel uint8, timeout time.Duration) (fc *FadeCandy) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &FadeCandy{
		server:     server,
		channel:    channel,
		timeout:    timeout,
		dial:       dialOPC,
		on:         true,
		brightness: 255,
	}
}

func dialOPC(server string, timeout time.Duration) (sender opcSender, errGo error) {
	conn, errGo := net.DialTimeout("tcp", server, timeout)
	if errGo != nil {
		return nil, errGo
	}
	return &opcConn{conn: conn, timeout: timeout}, nil
}

// SetPower re-sends the last frame so that the change is visible immediately
func (fc *FadeCandy) SetPower(on bool, brightness int) (err errors.Error) {
	fc.on = on
	if brightness != KeepBrightness {
		fc.brightness = int(clampChannel(brightness))
	}
	if fc.last == nil {
		return nil
	}
	return fc.send(fc.last)
}

func (fc *FadeCandy) SetFrame(frame Frame) (err errors.Error) {
	fc.last = append(fc.last[:0], frame...)
	return fc.send(frame)
}

func (fc *FadeCandy) Clear(ledCount int) (err errors.Error) {
	return fc.SetFrame(NewFrame(ledCount))
}

// scale applies the power and brightness settings to a single color
func (fc *FadeCandy) scale(c RGB) (r, g, b uint8) {
	if !fc.on {
		return 0, 0, 0
	}
	return uint8(int(c.R) * fc.brightness / 255),
		uint8(int(c.G) * fc.brightness / 255),
		uint8(int(c.B) * fc.brightness / 255)
}

func (fc *FadeCandy) message(frame Frame) (m *opc.Message) {
	m = opc.NewMessage(fc.channel)
	m.SetLength(uint16(len(frame) * 3))
	for i, c := range frame {
		r, g, b := fc.scale(c)
		m.SetPixelColor(i, r, g, b)
	}
	return m
}

func (fc *FadeCandy) send(frame Frame) (err errors.Error) {
	if fc.client == nil {
		client, errGo := fc.dial(fc.server, fc.timeout)
		if errGo != nil {
			return errors.Wrap(errGo).With("server", fc.server).With("stack", stack.Trace().TrimRuntime())
		}
		fc.client = client
	}

	if errGo := fc.client.Send(fc.message(frame)); errGo != nil {
		// A timed out write may have left a partial message on the wire
		fc.client.Close()
		fc.client = nil
		return errors.Wrap(errGo).With("server", fc.server).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}
