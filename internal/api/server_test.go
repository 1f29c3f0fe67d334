package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/engine"
	"github.com/ferrum-mmo/engine/internal/entropy"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/resource"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

func testServer() *Server {
	tbl := &balance.Table{
		GameSpeed: 1.0,
		Buildings: map[string]balance.Building{
			"woodcutter": {
				BaseCost:        resource.Amounts{Wood: 50},
				CostMultiplier:  1.5,
				BaseTimeSeconds: 100,
				TimeMultiplier:  1.5,
				MaxLevel:        3,
			},
		},
		Units: map[string]balance.Unit{
			"spearman": {Cost: resource.Amounts{Wood: 50}, RecruitSeconds: 60, Speed: 4, Weight: 10, Population: 1},
		},
	}
	v := &village.Village{
		ID:        "v-1",
		Name:      "Gniezno",
		Kind:      village.KindPlayer,
		Position:  world.Coord{X: 10, Y: 10},
		Resources: resource.Amounts{Wood: 500},
		Buildings: map[string]int{},
		Garrison:  map[string]int64{},
		Loyalty:   100,
	}
	orch := engine.NewOrchestrator(tbl, entropy.Seeded(1), engine.NewState(nil, []*village.Village{v}))
	return &Server{
		Orch:     orch,
		Driver:   engine.NewDriver(orch),
		AdminKey: "sekret",
	}
}

func TestVillageDetail(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/village/v-1", nil)
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Gniezno") {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/village/ghost", nil)
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d for unknown village", rec.Code)
	}
}

func TestBuildRequiresBearerToken(t *testing.T) {
	s := testServer()

	body := strings.NewReader(`{"building":"woodcutter"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/village/v-1/build", body)
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d without token", rec.Code)
	}

	body = strings.NewReader(`{"building":"woodcutter"}`)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/village/v-1/build", body)
	req.Header.Set("Authorization", "Bearer sekret")
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d with token: %s", rec.Code, rec.Body.String())
	}
}

func TestBuildErrorMapping(t *testing.T) {
	s := testServer()

	// Unknown building kind is a client error.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/village/v-1/build", strings.NewReader(`{"building":"ziggurat"}`))
	req.Header.Set("Authorization", "Bearer sekret")
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for unknown building", rec.Code)
	}

	// Drain the stock, then expect a conflict.
	s.Orch.View(func(st *engine.State) {
		st.Villages["v-1"].Resources = resource.Amounts{}
	})
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/village/v-1/build", strings.NewReader(`{"building":"woodcutter"}`))
	req.Header.Set("Authorization", "Bearer sekret")
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d for empty stock", rec.Code)
	}
}

func TestAttackValidation(t *testing.T) {
	s := testServer()
	s.Orch.View(func(st *engine.State) {
		st.Villages["v-1"].Garrison["spearman"] = 10
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/village/v-1/attack",
		strings.NewReader(`{"x":500,"y":500,"units":{"spearman":5},"tactic":"klin"}`))
	req.Header.Set("Authorization", "Bearer sekret")
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for out-of-bounds target", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/village/v-1/attack",
		strings.NewReader(`{"x":20,"y":20,"units":{"spearman":50},"tactic":"klin"}`))
	req.Header.Set("Authorization", "Bearer sekret")
	s.handleVillageRoutes(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d for garrison overdraw", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrVillageNotFound, http.StatusNotFound},
		{village.ErrInsufficientResources, http.StatusConflict},
		{village.ErrCapacityExceeded, http.StatusConflict},
		{military.ErrEmptyForce, http.StatusBadRequest},
		{balance.ErrUnknownKind, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
