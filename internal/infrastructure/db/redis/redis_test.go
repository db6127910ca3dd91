package redis

import (
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	opts := Config{Addr: "cache:6379", Password: "pw", DB: 2, Timeout: 2 * time.Second}.options()
	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("connection settings not applied: %+v", opts)
	}
	if opts.DialTimeout != 2*time.Second || opts.ReadTimeout != 2*time.Second || opts.WriteTimeout != 2*time.Second {
		t.Fatalf("timeouts not applied: dial=%s read=%s write=%s", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}
	if opts.ClientName != clientName {
		t.Fatalf("client name = %q", opts.ClientName)
	}
}

func TestConfig_DefaultTimeout(t *testing.T) {
	if got := (Config{}).options().DialTimeout; got != defaultTimeout {
		t.Fatalf("dial timeout = %s, want %s", got, defaultTimeout)
	}
}
