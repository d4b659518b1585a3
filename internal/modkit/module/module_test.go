package module

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	phttp "seogate/internal/platform/net/http"
)

type pruner interface{ Prune() int }
type looker interface{ Lookup() string }

type svc struct{}

func (svc) Prune() int      { return 7 }
func (svc) Lookup() string { return "hit" }

type bundle struct {
	Cache  looker
	Prune  pruner
}

type fake struct {
	name  string
	ports any
}

func (f fake) MountRoutes(phttp.Router) {}
func (f fake) Ports() any              { return f.ports }
func (f fake) Name() string            { return f.name }

func TestPortsOf(t *testing.T) {
	cases := []struct {
		name  string
		ports any
		ok    bool
	}{
		{"nil bundle", nil, false},
		{"direct", svc{}, true},
		{"struct field", bundle{Prune: svc{}}, true},
		{"field holding a wider value", bundle{Cache: svc{}}, true},
		{"no match", bundle{}, false},
		{"non struct", 42, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[pruner](fake{name: "cache", ports: tc.ports})
			if ok != tc.ok {
				t.Fatalf("ok = %v", ok)
			}
			if ok && got.Prune() != 7 {
				t.Fatalf("Prune = %d", got.Prune())
			}
		})
	}
}

func TestMustPortsOf_PanicNamesModule(t *testing.T) {
	defer func() {
		if r := recover(); r == nil || !strings.Contains(fmt.Sprint(r), "quota") {
			t.Fatalf("recover = %v", r)
		}
	}()
	MustPortsOf[pruner](fake{name: "quota"})
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("cache", bundle{Prune: svc{}})
	got, ok := PortsAs[bundle]("cache")
	if !ok || got.Prune.Prune() != 7 {
		t.Fatalf("PortsAs = %+v %v", got, ok)
	}
	if _, ok := PortsAs[int]("cache"); ok {
		t.Fatal("type mismatch must report false")
	}
	if _, ok := PortsAs[bundle]("usage"); ok {
		t.Fatal("missing name must report false")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			Register(fmt.Sprintf("m%d", i), i)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = PortsAs[bundle]("cache")
		}()
	}
	wg.Wait()

	if names := Names(); len(names) != 17 || names[0] != "cache" || names[1] != "m0" {
		t.Fatalf("Names = %v", names)
	}

	Reset()
	if _, ok := PortsAs[bundle]("cache"); ok || len(Names()) != 0 {
		t.Fatal("Reset should clear the registry")
	}
}
