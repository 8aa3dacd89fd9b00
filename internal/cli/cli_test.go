package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/forest/internal/adapters/http/api"
	service "github.com/okian/forest/internal/app"
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/seeder"
)

// execute runs forestctl with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	out, err := execute(t, "layout", "--width", "1000", "--height", "800", "a", "b", "c")
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	var res layoutResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("layout output is not json: %v\n%s", err, out)
	}
	if len(res.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(res.Points))
	}
	for i, p := range res.Points {
		if p.ID != []string{"a", "b", "c"}[i] {
			t.Errorf("point %d has id %q", i, p.ID)
		}
		if p.PX < 24 || p.PX > 976 || p.PY < 24 || p.PY > 776 {
			t.Errorf("point %s projects outside the padded area: %v,%v", p.ID, p.PX, p.PY)
		}
	}

	again, _ := execute(t, "layout", "--width", "1000", "--height", "800", "a", "b", "c")
	if again != out {
		t.Error("layout is not deterministic")
	}
}

func TestLayoutCommandEmpty(t *testing.T) {
	out, err := execute(t, "layout")
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	if !strings.Contains(out, `"points": []`) {
		t.Errorf("expected an empty point list, got %s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "--new", "b", "--static", "--date", "2026-01-10", "a", "b", "c")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, want := range []string{"<svg", `data-season="winter"`, `class="pulse"`, `href="/entry/a"`, `href="/entry/c"`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg is missing %s", want)
		}
	}
	if strings.Contains(out, "<animate") {
		t.Error("static render should not animate")
	}

	if _, err := execute(t, "render", "--date", "tomorrow"); err == nil {
		t.Error("expected an error for an invalid date")
	}

	faded, err := execute(t, "render", "--new", "b", "--pulse-at", "2s", "a", "b")
	if err != nil {
		t.Fatalf("render --pulse-at failed: %v", err)
	}
	if strings.Contains(faded, `class="pulse"`) || strings.Contains(faded, "<animate") {
		t.Error("a frame after the pop should have no pulse")
	}
}

func TestFlickerCommand(t *testing.T) {
	out, err := execute(t, "flicker", "--seed", "front", "--depth", "0", "--ticks", "500")
	if err != nil {
		t.Fatalf("flicker failed: %v", err)
	}
	var res flickerResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("flicker output is not json: %v", err)
	}
	if !res.Active || res.Ticks < 500 {
		t.Errorf("expected an active light with 500 ticks, got %+v", res)
	}
	if res.MaxAbsX > 2 || res.MaxAbsY > 2 {
		t.Errorf("offset escaped the clamp: %+v", res)
	}
	if res.Moves == 0 {
		t.Errorf("expected the light to move: %+v", res)
	}

	if _, err := execute(t, "flicker", "--cutoff", "2"); err == nil {
		t.Error("expected an error for an invalid cutoff")
	}
}

func TestSimulateBeyondCutoff(t *testing.T) {
	res := simulate("back", 0.3, 100, flicker.DefaultConfig())
	if res.Active || res.Ticks != 0 || res.Final != (flicker.Offset{}) {
		t.Errorf("a light beyond the cutoff should rest, got %+v", res)
	}
}

func TestSeedCommand(t *testing.T) {
	ctx := context.Background()
	svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(64))
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.Stop()
	srv := httptest.NewServer(api.NewServer(svc, svc))
	defer srv.Close()

	out, err := execute(t, "seed", "--url", srv.URL, "--entries", "6", "--workers", "2", "--days", "10")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	var stats seeder.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("seed output is not json: %v", err)
	}
	if stats.Accepted != 6 || stats.Lights != 6 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
