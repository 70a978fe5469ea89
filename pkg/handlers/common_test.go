package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{name: "forwarded single", forwarded: "203.0.113.9", remote: "10.0.0.1:1234", want: "203.0.113.9"},
		{name: "forwarded chain takes first", forwarded: "203.0.113.9, 10.0.0.2", remote: "10.0.0.1:1234", want: "203.0.113.9"},
		{name: "real ip fallback", realIP: "198.51.100.4", remote: "10.0.0.1:1234", want: "198.51.100.4"},
		{name: "remote addr fallback", remote: "192.0.2.7:5678", want: "192.0.2.7"},
		{name: "remote addr without port", remote: "192.0.2.7", want: "192.0.2.7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-Ip", tc.realIP)
			}

			if got := ClientIP(r); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidatorEmail(t *testing.T) {
	cases := map[string]bool{
		"ada@example.com":     true,
		"a.b+c@sub.host.org":  true,
		"no-at-sign.com":      false,
		"spaces in@local.com": false,
		"missing@tld":         false,
		"":                    false,
	}

	for value, valid := range cases {
		value := value
		v := &Validator{value: &value, location: "body", field: "email"}
		err := v.Email()
		if valid && err != nil {
			t.Errorf("%q rejected: %+v", value, err)
		}
		if !valid && err == nil {
			t.Errorf("%q accepted", value)
		}
	}
}

func TestValidatorRequired(t *testing.T) {
	v := &Validator{location: "body", field: "title"}
	if err := v.Required(); err == nil {
		t.Error("nil value must fail Required")
	}

	present := "x"
	v = &Validator{value: &present, location: "body", field: "title"}
	if err := v.Required(); err != nil {
		t.Errorf("present value failed Required: %+v", err)
	}
}
