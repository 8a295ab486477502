package mailer

import (
	"bytes"
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/config"
)

func TestNewPicksImplementation(t *testing.T) {
	_, ok := New(config.MailConfig{}).(LogMailer)
	assert.True(t, ok)

	_, ok = New(config.MailConfig{Host: "smtp.local", Port: 25}).(*SMTPMailer)
	assert.True(t, ok)
}

func TestNewMsgFoldsSubjectNewlines(t *testing.T) {
	mm, err := newMsg("no-reply@example.com", Message{
		To:      "ana@example.com",
		Subject: "Hello\r\nBcc: evil@example.com",
		Body:    "line one\nline two",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = mm.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.NotContains(t, raw, "\r\nBcc:")
	assert.Contains(t, raw, "Hello Bcc: evil@example.com")
	assert.Contains(t, raw, "ana@example.com")
	assert.Contains(t, raw, "text/plain")
}

func TestNewMsgRejectsBadAddress(t *testing.T) {
	_, err := newMsg("no-reply@example.com", Message{To: "not an address"})
	assert.Error(t, err)
}

func listen(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln, ln.Addr().(*net.TCPAddr).Port
}

// serveSMTP answers one session with the minimum a plain-text client needs and
// returns the DATA section on the channel.
func serveSMTP(t *testing.T, ln net.Listener) <-chan string {
	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP test")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.Fields(line + " x")[0])
			switch cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 8BITMIME")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				data <- string(body)
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("250 OK")
			}
		}
	}()
	return data
}

func TestSMTPMailerSend(t *testing.T) {
	ln, port := listen(t)
	data := serveSMTP(t, ln)

	m := New(config.MailConfig{Host: "127.0.0.1", Port: port, From: "desk@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Send(ctx, Message{To: "ana@example.com", Subject: "Booking BK-1", Body: "See you soon"}))

	select {
	case raw := <-data:
		assert.Contains(t, raw, "Subject: Booking BK-1")
		assert.Contains(t, raw, "desk@example.com")
		assert.Contains(t, raw, "See you soon")
	case <-time.After(2 * time.Second):
		t.Fatal("server never received DATA")
	}
}

func TestSMTPMailerHonoursContextDeadline(t *testing.T) {
	ln, port := listen(t)
	go func() {
		var held []net.Conn
		for {
			conn, err := ln.Accept()
			if err != nil {
				for _, c := range held {
					c.Close()
				}
				return
			}
			// accept and never speak
			held = append(held, conn)
		}
	}()

	m := New(config.MailConfig{Host: "127.0.0.1", Port: port, From: "desk@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Send(ctx, Message{To: "ana@example.com", Subject: "s", Body: "b"}) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Send still blocked long after the context deadline")
	}
}

func TestSendAsyncSkipsEmptyRecipient(t *testing.T) {
	SendAsync(nil, "", Message{To: "a@example.com"})
	SendAsync(LogMailer{}, "", Message{To: "  "})
}
