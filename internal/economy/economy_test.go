package economy

import (
	"testing"

	"github.com/ferrum-mmo/engine/internal/resource"
)

func TestTribute(t *testing.T) {
	prod := resource.Amounts{Wood: 75, Stone: 40, Iron: 19, Grain: 100}
	got := Tribute(prod)
	want := resource.Amounts{Wood: 7, Stone: 4, Iron: 1, Grain: 10}
	if got != want {
		t.Fatalf("Tribute = %+v, want %+v", got, want)
	}
}

func TestPayRansomFlipsOnce(t *testing.T) {
	v := NewVassalage("suzerain", "vassal", 1000)
	if v.Status != VassalActive || v.TributeRate != 0.10 {
		t.Fatalf("fresh vassalage: %+v", v)
	}

	if freed := PayRansom(v, 400); freed {
		t.Fatal("partial payment must not free")
	}
	if freed := PayRansom(v, 600); !freed {
		t.Fatal("full payment must free")
	}
	if v.Status != VassalFree {
		t.Fatalf("status = %s", v.Status)
	}

	// Further payments are accepted (and kept) but never "free" again.
	if freed := PayRansom(v, 100); freed {
		t.Fatal("freed vassal cannot be freed twice")
	}
	if v.PaidRansom != 1100 {
		t.Fatalf("paid = %d, want 1100", v.PaidRansom)
	}
}

func TestPayRansomOverpaymentKept(t *testing.T) {
	v := NewVassalage("s", "v", 1000)
	if freed := PayRansom(v, 1500); !freed {
		t.Fatal("overpayment still frees")
	}
	// Permissive by design: the excess is kept, not refunded.
	if v.PaidRansom != 1500 {
		t.Fatalf("paid = %d, want 1500", v.PaidRansom)
	}
}

func TestPayRansomRejectsNonPositive(t *testing.T) {
	v := NewVassalage("s", "v", 100)
	PayRansom(v, 0)
	PayRansom(v, -50)
	if v.PaidRansom != 0 {
		t.Fatalf("paid = %d", v.PaidRansom)
	}
}

func TestCapturePrisoners(t *testing.T) {
	attacker := map[string]int64{"spearman": 30, "cavalry": 10}
	defender := map[string]int64{"spearman": 55, "archer": 6}

	// 5% of 101 total losses, floored.
	if got := CapturePrisoners(attacker, defender); got != 5 {
		t.Fatalf("prisoners = %d, want 5", got)
	}

	if got := CapturePrisoners(nil, nil); got != 0 {
		t.Fatalf("prisoners with no losses = %d", got)
	}
}
