package auth

import (
	"errors"
	"testing"
	"time"
)

var testLifetimes = Lifetimes{
	Normal:        15 * time.Minute,
	Refresh:       720 * time.Hour,
	ResetPassword: 30 * time.Minute,
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCodecRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec("test-secret", testLifetimes)
	c.now = fixedClock(now)

	issued, err := c.Issue(42, "skipper@example.com", "CUSTOMER_OWNER", ClassNormal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Class != ClassNormal {
		t.Errorf("class = %q, want %q", issued.Class, ClassNormal)
	}
	if want := now.Add(testLifetimes.Normal); !issued.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want %v", issued.ExpiresAt, want)
	}

	claims, err := c.Parse(issued.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != 42 {
		t.Errorf("id = %d, want 42", claims.ID)
	}
	if claims.Subject != "skipper@example.com" {
		t.Errorf("sub = %q, want skipper@example.com", claims.Subject)
	}
	if got := claims.PrimaryRole(); got != "CUSTOMER_OWNER" {
		t.Errorf("role = %q, want CUSTOMER_OWNER", got)
	}
}

func TestCodecClassLifetimes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec("test-secret", testLifetimes)
	c.now = fixedClock(now)

	tests := []struct {
		class string
		ttl   time.Duration
	}{
		{ClassNormal, testLifetimes.Normal},
		{ClassRefresh, testLifetimes.Refresh},
		{ClassResetPassword, testLifetimes.ResetPassword},
	}
	for _, tc := range tests {
		issued, err := c.Issue(1, "a@b.c", "ADMINISTRATOR", tc.class)
		if err != nil {
			t.Fatalf("Issue(%s): %v", tc.class, err)
		}
		if want := now.Add(tc.ttl); !issued.ExpiresAt.Equal(want) {
			t.Errorf("%s expires at %v, want %v", tc.class, issued.ExpiresAt, want)
		}
		class, err := c.TokenClass(issued.Token)
		if err != nil {
			t.Fatalf("TokenClass(%s): %v", tc.class, err)
		}
		if class != tc.class {
			t.Errorf("TokenClass = %q, want %q", class, tc.class)
		}
	}
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	a := NewCodec("secret-a", testLifetimes)
	b := NewCodec("secret-b", testLifetimes)

	issued, err := a.Issue(1, "a@b.c", "ADMINISTRATOR", ClassNormal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Parse(issued.Token); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Parse = %v, want ErrTokenInvalidSignature", err)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	c := NewCodec("test-secret", testLifetimes)

	if _, err := c.Parse("not.a.jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Parse(garbage) = %v, want ErrTokenMalformed", err)
	}
	if _, err := c.Parse(""); !errors.Is(err, ErrTokenIllegalArgument) {
		t.Errorf("Parse(empty) = %v, want ErrTokenIllegalArgument", err)
	}
}

func TestCodecExpired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec("test-secret", testLifetimes)
	c.now = fixedClock(issuedAt)

	issued, err := c.Issue(7, "late@example.com", "TECHNICIAN", ClassNormal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	c.now = fixedClock(issuedAt.Add(testLifetimes.Normal + time.Minute))
	if _, err := c.Parse(issued.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Parse = %v, want ErrTokenExpired", err)
	}

	// The logout path must still be able to decode the same token.
	claims, err := c.ParseUnverifiedExpiry(issued.Token)
	if err != nil {
		t.Fatalf("ParseUnverifiedExpiry: %v", err)
	}
	if claims.ID != 7 {
		t.Errorf("id = %d, want 7", claims.ID)
	}
}

func TestCodecIssueRequiresEmail(t *testing.T) {
	c := NewCodec("test-secret", testLifetimes)
	if _, err := c.Issue(1, "", "ADMINISTRATOR", ClassNormal); !errors.Is(err, ErrTokenIllegalArgument) {
		t.Errorf("Issue = %v, want ErrTokenIllegalArgument", err)
	}
}
