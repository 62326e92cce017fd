package crowdfund

import (
	"errors"
	"math/big"
	"testing"
)

func TestPhase_Next(t *testing.T) {
	tests := []struct {
		from    Phase
		op      Operation
		want    Phase
		wantErr bool
	}{
		{NotStarted, OpOpen, EarlyBirds, false},
		{EarlyBirds, OpFinalizeEarlyBirds, Open, false},
		{Open, OpClose, Closed, false},
		{NotStarted, OpFinalizeEarlyBirds, NotStarted, true},
		{NotStarted, OpClose, NotStarted, true},
		{EarlyBirds, OpOpen, EarlyBirds, true},
		{EarlyBirds, OpClose, EarlyBirds, true},
		{Open, OpOpen, Open, true},
		{Open, OpFinalizeEarlyBirds, Open, true},
		{Closed, OpOpen, Closed, true},
		{Closed, OpFinalizeEarlyBirds, Closed, true},
		{Closed, OpClose, Closed, true},
	}
	for _, tt := range tests {
		got, err := tt.from.Next(tt.op)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("%s/%s: expected ErrInvalidState, got %v", tt.from, tt.op, err)
			}
		} else if err != nil {
			t.Errorf("%s/%s: unexpected error %v", tt.from, tt.op, err)
		}
		if got != tt.want {
			t.Errorf("%s/%s: expected %s, got %s", tt.from, tt.op, tt.want, got)
		}
	}
}

func TestPool_TakeAndAbsorb(t *testing.T) {
	early := newPool("earlyBird", big.NewInt(100))
	public := newPool("public", big.NewInt(50))

	if err := early.Take(big.NewInt(30)); err != nil {
		t.Fatalf("take: %v", err)
	}
	if err := early.Take(big.NewInt(71)); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if early.Remaining.Int64() != 70 {
		t.Fatalf("failed take must not change the pool, remaining %s", early.Remaining)
	}

	public.Absorb(early)
	if public.Remaining.Int64() != 120 || public.Cap.Int64() != 120 {
		t.Fatalf("public pool should hold 120/120, got %s/%s", public.Remaining, public.Cap)
	}
	if early.Remaining.Sign() != 0 || early.Delivered().Int64() != 30 {
		t.Fatalf("early bird pool should keep 30 delivered, got remaining %s delivered %s", early.Remaining, early.Delivered())
	}
}

func TestParams_Default(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	want, _ := new(big.Int).SetString("200000000000000000000000000", 10)
	if p.MaxSupply().Cmp(want) != 0 {
		t.Fatalf("expected max supply %s, got %s", want, p.MaxSupply())
	}

	p.AngelPartialUnlockPercent = 120
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for unlock percent above 100")
	}
}
