package domain

import "testing"

func TestDecisionFromScoreBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  Decision
	}{
		{100, DecisionStrongBuy},
		{75, DecisionStrongBuy},
		{74.999, DecisionBuy},
		{60, DecisionBuy},
		{59.999, DecisionHold},
		{40, DecisionHold},
		{39.999, DecisionSell},
		{25, DecisionSell},
		{24.999, DecisionStrongSell},
		{0, DecisionStrongSell},
	}
	for _, tc := range cases {
		if got := DecisionFromScore(tc.score); got != tc.want {
			t.Errorf("DecisionFromScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestIsSupportedInterval(t *testing.T) {
	t.Parallel()

	for _, interval := range SupportedIntervals {
		if !IsSupportedInterval(interval) {
			t.Errorf("expected %q supported", interval)
		}
	}
	for _, interval := range []string{"", "5m", "1D", "1mo"} {
		if IsSupportedInterval(interval) {
			t.Errorf("expected %q unsupported", interval)
		}
	}
}

func TestDecisionSides(t *testing.T) {
	t.Parallel()

	if !DecisionStrongBuy.IsBuy() || !DecisionBuy.IsBuy() {
		t.Fatal("expected buy decisions to report IsBuy")
	}
	if !DecisionStrongSell.IsSell() || !DecisionSell.IsSell() {
		t.Fatal("expected sell decisions to report IsSell")
	}
	if DecisionHold.IsBuy() || DecisionHold.IsSell() {
		t.Fatal("HOLD must be neither buy nor sell")
	}
}
