package csrf

import (
	"testing"
	"time"
)

// FuzzVerify exercises the token parser with arbitrary strings.
// Goal: no panics; invalid inputs must be rejected with typed errors.
func FuzzVerify(f *testing.F) {
	c, err := NewCodec(Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    24 * time.Hour,
	})
	if err != nil {
		f.Fatal(err)
	}

	valid, err := c.Issue("session-a")
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add(".")
	f.Add("0.")
	f.Add("1700000000000.AAAA")
	f.Add("99999999999999999999.AAAA")
	f.Add("1700000000000..extra")

	f.Fuzz(func(t *testing.T, input string) {
		err := c.Verify("session-a", input)
		if err == nil && input != valid {
			t.Fatalf("forged input verified: %q", input)
		}
		switch err {
		case nil, ErrMalformed, ErrExpired, ErrMismatch:
		default:
			t.Fatalf("unexpected error kind for %q: %v", input, err)
		}
	})
}
