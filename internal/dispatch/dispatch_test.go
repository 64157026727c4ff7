package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestToken_RoundTrip(t *testing.T) {
	tok := NewToken()
	if tok.IsZero() {
		t.Fatal("NewToken() returned zero token")
	}

	parsed, err := ParseToken(tok.String())
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if parsed != tok {
		t.Errorf("ParseToken() = %v, want %v", parsed, tok)
	}

	if _, err := ParseToken("not-a-token"); err == nil {
		t.Error("ParseToken should reject garbage")
	}
	if NewToken() == tok {
		t.Error("tokens should be unique")
	}
}

func TestDispatcher_DeliverMatching(t *testing.T) {
	d := New()
	tok := NewToken()

	p, err := d.Register(tok, "user-1", "chan-1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	go func() {
		d.Deliver(Selection{Token: tok, UserID: "user-1", ChannelID: "chan-1", Value: "English"})
	}()

	sel, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if sel.Value != "English" {
		t.Errorf("Value = %q, want English", sel.Value)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d after resolution, want 0", d.Len())
	}
}

func TestDispatcher_FilterMismatch(t *testing.T) {
	d := New()
	tok := NewToken()
	p, _ := d.Register(tok, "user-1", "chan-1")
	defer p.Cancel()

	tests := []Selection{
		{Token: tok, UserID: "user-2", ChannelID: "chan-1"},
		{Token: tok, UserID: "user-1", ChannelID: "chan-2"},
		{Token: NewToken(), UserID: "user-1", ChannelID: "chan-1"},
	}
	for _, sel := range tests {
		if d.Deliver(sel) {
			t.Errorf("Deliver(%+v) = true, want false", sel)
		}
	}
	if d.Len() != 1 {
		t.Errorf("registration should still be pending")
	}
}

func TestDispatcher_Timeout(t *testing.T) {
	d := New()
	tok := NewToken()
	p, _ := d.Register(tok, "u", "c")

	_, err := p.Wait(context.Background(), 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Wait() error = %v, want ErrTimeout", err)
	}
	if d.Deliver(Selection{Token: tok, UserID: "u", ChannelID: "c"}) {
		t.Error("late selection must not be delivered")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestDispatcher_ContextCancel(t *testing.T) {
	d := New()
	p, _ := d.Register(NewToken(), "u", "c")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestDispatcher_ExactlyOnce(t *testing.T) {
	d := New()
	tok := NewToken()
	p, _ := d.Register(tok, "u", "c")

	var delivered atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Deliver(Selection{Token: tok, UserID: "u", ChannelID: "c", Value: "French"}) {
				delivered.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := delivered.Load(); got != 1 {
		t.Fatalf("delivered %d times, want 1", got)
	}
	if _, err := p.Wait(context.Background(), time.Second); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestDispatcher_DuplicateRegister(t *testing.T) {
	d := New()
	tok := NewToken()
	p, _ := d.Register(tok, "u", "c")
	defer p.Cancel()

	if _, err := d.Register(tok, "u", "c"); !errors.Is(err, ErrDuplicateToken) {
		t.Errorf("Register() error = %v, want ErrDuplicateToken", err)
	}
}
