package orchestration

import "testing"

func TestGuardStaysFreshUntilBump(t *testing.T) {
	token := NewCancelToken()

	guard := token.Guard()
	if guard.Stale() {
		t.Fatalf("expected freshly captured guard not stale")
	}

	token.Bump()
	if !guard.Stale() {
		t.Fatalf("expected guard stale after bump")
	}
}

func TestBumpInvalidatesAllEarlierGuards(t *testing.T) {
	token := NewCancelToken()

	first := token.Guard()
	token.Bump()
	second := token.Guard()
	token.Bump()

	if !first.Stale() || !second.Stale() {
		t.Fatalf("expected every earlier guard stale after later bumps")
	}

	third := token.Guard()
	if third.Stale() {
		t.Fatalf("expected guard captured after last bump not stale")
	}
}

func TestZeroGuardIsNeverStale(t *testing.T) {
	var guard Guard
	if guard.Stale() {
		t.Fatalf("expected zero guard never stale")
	}
}
