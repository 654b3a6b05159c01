package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/vigil-dev/vigil/pkg/errors"
)

type testItem struct {
	ID   int
	Name string
}

func TestNew(t *testing.T) {
	reg := New[testItem]()

	if reg == nil {
		t.Fatal("New() returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got count %d", reg.Count())
	}
}

func TestRegister(t *testing.T) {
	reg := New[testItem]()

	t.Run("register valid item", func(t *testing.T) {
		err := reg.Register("item1", testItem{ID: 1, Name: "one"})
		if err != nil {
			t.Fatalf("Register() error = %v, want nil", err)
		}
		if reg.Count() != 1 {
			t.Errorf("Count() = %d, want 1", reg.Count())
		}
	})

	t.Run("register with empty name", func(t *testing.T) {
		err := reg.Register("", testItem{ID: 2})
		if !errors.IsErrorCode(err, errors.ErrInvalidInput) {
			t.Errorf("Register() with empty name should return ErrInvalidInput, got %v", err)
		}
	})

	t.Run("register duplicate", func(t *testing.T) {
		err := reg.Register("item1", testItem{ID: 3})
		if !errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			t.Errorf("Register() duplicate should return ErrAlreadyExists, got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	reg := New[testItem]()
	want := testItem{ID: 7, Name: "seven"}
	if err := reg.Register("seven", want); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Get("seven")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if _, err := reg.Get("missing"); !errors.IsErrorCode(err, errors.ErrNotFound) {
		t.Errorf("Get() missing should return ErrNotFound, got %v", err)
	}
}

func TestListSorted(t *testing.T) {
	reg := New[testItem]()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(name, testItem{}); err != nil {
			t.Fatal(err)
		}
	}

	got := reg.List()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestHas(t *testing.T) {
	reg := New[testItem]()
	if err := reg.Register("present", testItem{}); err != nil {
		t.Fatal(err)
	}

	if !reg.Has("present") {
		t.Error("Has() = false for registered item")
	}
	if reg.Has("absent") {
		t.Error("Has() = true for unregistered item")
	}
}

func TestConcurrentAccess(t *testing.T) {
	reg := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(fmt.Sprintf("item%d", i), i)
			_ = reg.List()
			_, _ = reg.Get(fmt.Sprintf("item%d", i/2))
		}(i)
	}
	wg.Wait()

	if reg.Count() != 50 {
		t.Errorf("Count() = %d, want 50", reg.Count())
	}
}
