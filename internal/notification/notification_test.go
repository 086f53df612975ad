package notification

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/visitor-kiosk-api/internal/config"
)

type stubNotifier struct {
	calls []Arrival
	err   error
}

func (n *stubNotifier) Notify(_ context.Context, a Arrival) error {
	n.calls = append(n.calls, a)
	return n.err
}

func sampleArrival() Arrival {
	company := "Acme, Inc."
	return Arrival{
		VisitID:     7,
		VisitorName: "Ana",
		Company:     &company,
		Purpose:     "Meeting",
		HostName:    "Grace Hopper",
		HostEmail:   "grace@example.com",
		CheckInAt:   time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestMessage(t *testing.T) {
	a := sampleArrival()
	assert.Equal(t, "Ana from Acme, Inc. has arrived for Meeting.", Message(a))
	assert.Equal(t, "Your visitor Ana has arrived", Subject(a))

	a.Company = nil
	assert.Equal(t, "Ana has arrived for Meeting.", Message(a))
}

func TestServiceFansOutAndLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	failing := &stubNotifier{err: errors.New("smtp down")}
	ok := &stubNotifier{}
	svc := NewService(zerolog.New(&buf), failing, nil, ok)

	svc.HostArrival(context.Background(), sampleArrival())

	assert.Len(t, failing.calls, 1)
	assert.Len(t, ok.calls, 1)
	assert.Contains(t, buf.String(), "failed to deliver arrival notification")
}

func TestServiceSkipsHostWithoutEmail(t *testing.T) {
	n := &stubNotifier{}
	svc := NewService(zerolog.Nop(), n)

	a := sampleArrival()
	a.HostEmail = " "
	svc.HostArrival(context.Background(), a)

	assert.Empty(t, n.calls)
}

func TestEmailNotifierRequiresConfig(t *testing.T) {
	_, err := NewEmailNotifier(config.EmailConfig{From: "kiosk@example.com"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewEmailNotifier(config.EmailConfig{SMTPHost: "smtp.example.com"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestEmailNotifierSendsToHost(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost: "smtp.example.com",
		From:     "kiosk@example.com",
	}, zerolog.Nop())
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.send = func(_ context.Context, addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), sampleArrival()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"grace@example.com"}, gotTo)
	assert.True(t, strings.Contains(gotMsg, "Subject: Your visitor Ana has arrived"))
	assert.Contains(t, gotMsg, "Ana from Acme, Inc. has arrived for Meeting.")
}

func TestVisitorTextCannotAddHeaders(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost: "smtp.example.com",
		From:     "kiosk@example.com",
	}, zerolog.Nop())
	require.NoError(t, err)

	var raw []byte
	n.send = func(_ context.Context, _ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		raw = msg
		return nil
	}

	a := sampleArrival()
	a.VisitorName = "Ana\r\nBcc: leak@evil.test\r\nContent-Type: text/html"
	require.NoError(t, n.Notify(context.Background(), a))

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Empty(t, msg.Header.Get("Bcc"))
	assert.Equal(t, `text/plain; charset="UTF-8"`, msg.Header.Get("Content-Type"))
	assert.Equal(t, "Your visitor Ana Bcc: leak@evil.test Content-Type: text/html has arrived", msg.Header.Get("Subject"))
	assert.Len(t, msg.Header, 5)
}

func TestSubjectIsSingleLine(t *testing.T) {
	a := sampleArrival()
	a.VisitorName = "  Ana\n\tMaria\x00 "
	assert.Equal(t, "Your visitor Ana Maria has arrived", Subject(a))
}

func TestEmailNotifierGivesUpOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	// accept connections and never send the greeting
	conns := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				close(conns)
				return
			}
			conns <- conn
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		for conn := range conns {
			conn.Close()
		}
	})

	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: ln.Addr().(*net.TCPAddr).Port,
		From:     "kiosk@example.com",
		Timeout:  100 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- n.Notify(context.Background(), sampleArrival()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Notify did not return after its timeout")
	}
}
