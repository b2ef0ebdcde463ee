package intern

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unsafe"
)

func TestIntern_Canonical(t *testing.T) {
	p := New()
	a := p.Intern(strings.Repeat("lemma", 1))
	b := p.Intern(string([]byte("lemma")))

	if a != b {
		t.Fatalf("expected equal strings, got %q and %q", a, b)
	}
	if unsafe.StringData(a) != unsafe.StringData(b) {
		t.Error("expected both calls to return the same backing array")
	}
	if p.Intern("") != "" || p.Len() != 1 {
		t.Errorf("empty strings must not be stored, len=%d", p.Len())
	}

	p.Reset()
	if p.Len() != 0 {
		t.Errorf("expected empty pool after reset, got %d", p.Len())
	}
}

func TestIntern_Concurrent(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				p.Intern(fmt.Sprintf("type-%d", i%10))
			}
		}()
	}
	wg.Wait()

	if p.Len() != 10 {
		t.Errorf("expected 10 distinct strings, got %d", p.Len())
	}
}
