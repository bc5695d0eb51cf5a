package notify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNotifierOrder(t *testing.T) {
	t.Parallel()

	var n Notifier[int]
	var got []string
	n.Subscribe(func(v int) { got = append(got, "a") })
	n.Subscribe(func(v int) { got = append(got, "b") })
	n.Notify(1)

	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	t.Parallel()

	var n Notifier[string]
	calls := 0
	unsub := n.Subscribe(func(string) { calls++ })
	n.Notify("x")
	unsub()
	unsub() // idempotent
	n.Notify("y")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}
}

func TestNotifierUnsubscribeDuringDispatch(t *testing.T) {
	t.Parallel()

	var n Notifier[int]
	var second int
	var unsubSecond func()
	n.Subscribe(func(int) { unsubSecond() })
	unsubSecond = n.Subscribe(func(int) { second++ })

	n.Notify(1) // snapshot taken before the first listener unsubscribes the second
	n.Notify(2)

	if second != 1 {
		t.Errorf("second listener called %d times, want 1", second)
	}
}

func TestNotifierValue(t *testing.T) {
	t.Parallel()

	type event struct{ Body string }
	var n Notifier[event]
	var got event
	n.Subscribe(func(e event) { got = e })
	n.Notify(event{Body: "study"})
	if got.Body != "study" {
		t.Errorf("listener got %+v", got)
	}
}
