package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"testing"

	"s3backup/internal/report"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Cause
	}{
		{"Nil error", nil, CauseNone},
		{"DNS failure", &net.DNSError{Err: "no such host", Name: "smtp.example.com"}, CauseDNS},
		{"Wrapped DNS failure", fmt.Errorf("dial: %w", &net.DNSError{Err: "no such host"}), CauseDNS},
		{"Timeout", timeoutError{}, CauseTimeout},
		{"Wrapped timeout", &net.OpError{Op: "dial", Err: timeoutError{}}, CauseTimeout},
		{"Authentication failure 535", &textproto.Error{Code: 535, Msg: "5.7.8 bad credentials"}, CauseAuth},
		{"Authentication failure 530", &textproto.Error{Code: 530, Msg: "5.7.0 auth required"}, CauseAuth},
		{"Other SMTP failure", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, CauseOther},
		{"Generic failure", errors.New("connection reset by peer"), CauseOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cause := ClassifyFailure(tt.err); cause != tt.expected {
				t.Errorf("ClassifyFailure() = %v, want %v", cause, tt.expected)
			}
		})
	}
}

type fakeSender struct {
	err     error
	subject string
	body    string
}

func (f *fakeSender) Send(subject, body string) error {
	f.subject = subject
	f.body = body
	return f.err
}

func TestDispatchSuccess(t *testing.T) {
	sink := report.New("test backup")
	sink.Info("uploaded everything")
	sender := &fakeSender{}

	ok := Dispatch(sender, sink, "AWS backup for s dated: 2023-11-02")

	if !ok {
		t.Error("Dispatch() = false, want true")
	}
	if sender.subject != "AWS backup for s dated: 2023-11-02" {
		t.Errorf("subject = %q, want the run subject", sender.subject)
	}
	if !strings.Contains(sender.body, "uploaded everything") {
		t.Errorf("body = %q, want the captured report text", sender.body)
	}
	if sink.Len() != 1 {
		t.Errorf("sink.Len() = %d, want %d (no failure records on success)", sink.Len(), 1)
	}
}

func TestDispatchAuthFailure(t *testing.T) {
	sink := report.New("test backup")
	sink.Info("uploaded everything")
	sender := &fakeSender{err: &textproto.Error{Code: 535, Msg: "bad credentials"}}

	ok := Dispatch(sender, sink, "subject")

	if ok {
		t.Error("Dispatch() = true, want false")
	}

	// The body was materialized before the failure was logged: the emailed
	// report never contains its own delivery error.
	if strings.Contains(sender.body, "username and/or password") {
		t.Errorf("body = %q, want it captured before the failure record", sender.body)
	}

	records := sink.Records()
	last := records[len(records)-1]
	if !strings.Contains(last.Message, "username and/or password") {
		t.Errorf("last record = %q, want the auth failure cause", last.Message)
	}

	// The console fallback text carries the cause.
	if !strings.Contains(sink.Text(), "username and/or password") {
		t.Errorf("Text() = %q, want the failure cause for the console fallback", sink.Text())
	}
}

func TestDispatchFailureCauses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		substr string
	}{
		{"DNS", &net.DNSError{Err: "no such host"}, "invalid mail host name"},
		{"Timeout", timeoutError{}, "timed out"},
		{"Other", errors.New("connection reset"), "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := report.New("test backup")
			sender := &fakeSender{err: tt.err}

			if ok := Dispatch(sender, sink, "subject"); ok {
				t.Fatal("Dispatch() = true, want false")
			}

			records := sink.Records()
			if len(records) != 1 || !strings.Contains(records[0].Message, tt.substr) {
				t.Errorf("records = %v, want one containing %q", records, tt.substr)
			}
		})
	}
}
