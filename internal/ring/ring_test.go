package ring

import "testing"

func TestCapacityRejectsOverflow(t *testing.T) {
	r := New[int](3)
	for i := 0; i < 3; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d: expected room", i)
		}
	}
	if r.Push(3) {
		t.Errorf("push past capacity should be rejected")
	}
}

func TestPopOrderMatchesPushOrder(t *testing.T) {
	r := New[int](4)
	want := []int{10, 20, 30}
	for _, v := range want {
		r.Push(v)
	}
	for _, w := range want {
		got, ok := r.Pop()
		if !ok || got != w {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, w)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Errorf("Pop on empty buffer should report !ok")
	}
}

func TestNeverLosesAnItemAcrossWraps(t *testing.T) {
	r := New[int](4)
	next := 0
	popped := 0
	for round := 0; round < 1000; round++ {
		for r.Push(next) {
			next++
		}
		for {
			v, ok := r.Pop()
			if !ok {
				break
			}
			if v != popped {
				t.Fatalf("Pop() = %d, want %d", v, popped)
			}
			popped++
		}
	}
	if popped != next {
		t.Errorf("lost items: pushed %d, popped %d", next, popped)
	}
}
