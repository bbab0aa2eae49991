package trace

import "testing"

func TestStringPool(t *testing.T) {
	var pool StringPool
	a := pool.Intern("nvcontext")
	b := pool.Intern("(event_comm)")
	if a == b {
		t.Fatalf("distinct strings got the same handle %d", a)
	}
	if got := pool.Intern("nvcontext"); got != a {
		t.Errorf("re-interning returned %d, want %d", got, a)
	}
	if got := pool.Lookup(a); got != "nvcontext" {
		t.Errorf("Lookup(%d) = %q, want %q", a, got, "nvcontext")
	}
	if got := pool.Lookup(b); got != "(event_comm)" {
		t.Errorf("Lookup(%d) = %q, want %q", b, got, "(event_comm)")
	}
	if pool.Len() != 2 {
		t.Errorf("pool has %d strings, want 2", pool.Len())
	}
}

func TestStringPoolEmptyString(t *testing.T) {
	var pool StringPool
	id := pool.Intern("")
	if got := pool.Lookup(id); got != "" {
		t.Errorf("Lookup(%d) = %q, want empty string", id, got)
	}
	if got := pool.Intern(""); got != id {
		t.Errorf("re-interning empty string returned %d, want %d", got, id)
	}
}
