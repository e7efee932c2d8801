package resource

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []PressureEvent
}

func (n *recordingNotifier) NotifyPressure(evt PressureEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) snapshot() []PressureEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]PressureEvent, len(n.events))
	copy(out, n.events)
	return out
}

// Scenario 3 (§8): 100MB budget, critical_pct=95, warning_pct=50 (so the
// 90MB probe lands mid-band at "Medium", matching the spec's literal
// numbers). 90MB -> Medium; +10MB -> Critical with event; -20MB -> Medium.
func TestScenarioPressureHysteresis(t *testing.T) {
	notifier := &recordingNotifier{}
	mgr := New(notifier)

	budget := Budget{MaxBytes: 100 * 1024 * 1024, WarningPct: 50, CriticalPct: 95, Timeout: time.Second}
	require.True(t, mgr.Configure(TypeMemory, budget).IsOk())

	h1 := mgr.Acquire(AcquireRequest{Type: TypeMemory, Size: 90 * 1024 * 1024, Mode: NonBlocking})
	require.True(t, h1.IsOk())
	stats, _ := mgr.Stats(TypeMemory)
	assert.Equal(t, PressureMedium, stats.LastPressure)

	h2 := mgr.Acquire(AcquireRequest{Type: TypeMemory, Size: 10 * 1024 * 1024, Mode: NonBlocking})
	require.True(t, h2.IsOk())
	stats, _ = mgr.Stats(TypeMemory)
	assert.Equal(t, PressureCritical, stats.LastPressure)

	events := notifier.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, PressureCritical, events[1].Level)

	res := mgr.Release(Handle{rtype: TypeMemory, id: 999, size: 20 * 1024 * 1024})
	require.True(t, res.IsOk())
	stats, _ = mgr.Stats(TypeMemory)
	assert.Equal(t, PressureMedium, stats.LastPressure)
}

func TestResourceConservation(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeAudioVoice, Budget{MaxBytes: 1000, WarningPct: 50, CriticalPct: 90}).IsOk())

	var handles []Handle
	for i := 0; i < 10; i++ {
		res := mgr.Acquire(AcquireRequest{Type: TypeAudioVoice, Size: 50, Mode: NonBlocking})
		require.True(t, res.IsOk())
		handles = append(handles, res.Value())
	}

	stats, _ := mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 500, stats.CurrentBytes)

	for _, h := range handles {
		require.True(t, mgr.Release(h).IsOk())
	}

	stats, _ = mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 0, stats.CurrentBytes)
	assert.Equal(t, stats.TotalAcquired, stats.TotalReleased)
}

func TestNonBlockingDeniedWhenFull(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeIOPort, Budget{MaxBytes: 100, WarningPct: 50, CriticalPct: 90}).IsOk())

	require.True(t, mgr.Acquire(AcquireRequest{Type: TypeIOPort, Size: 100, Mode: NonBlocking}).IsOk())

	res := mgr.Acquire(AcquireRequest{Type: TypeIOPort, Size: 1, Mode: NonBlocking})
	require.True(t, res.IsErr())
	assert.Equal(t, CodeResourceExhausted, res.ErrorValue().Code)
}

func TestBlockingAcquireUnblocksOnRelease(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeIOPort, Budget{MaxBytes: 10, WarningPct: 50, CriticalPct: 90, Timeout: time.Second}).IsOk())

	first := mgr.Acquire(AcquireRequest{Type: TypeIOPort, Size: 10, Mode: NonBlocking})
	require.True(t, first.IsOk())

	done := make(chan bool, 1)
	go func() {
		res := mgr.Acquire(AcquireRequest{Type: TypeIOPort, Size: 5, Mode: Blocking, Timeout: time.Second})
		done <- res.IsOk()
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, mgr.Release(first.Value()).IsOk())

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("blocking acquire never unblocked")
	}
}

func TestTimeoutAcquireFailsWhenNeverReleased(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeIOPort, Budget{MaxBytes: 10, WarningPct: 50, CriticalPct: 90}).IsOk())

	require.True(t, mgr.Acquire(AcquireRequest{Type: TypeIOPort, Size: 10, Mode: NonBlocking}).IsOk())

	res := mgr.Acquire(AcquireRequest{Type: TypeIOPort, Size: 1, Mode: Timeout, Timeout: 30 * time.Millisecond})
	require.True(t, res.IsErr())
	assert.Equal(t, CodeResourceLocked, res.ErrorValue().Code)
}

func TestEmergencyReclamationLargestFirst(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeMemory, Budget{MaxBytes: 100, WarningPct: 50, CriticalPct: 90, AllowReclamation: true}).IsOk())

	require.True(t, mgr.Acquire(AcquireRequest{Type: TypeMemory, Size: 100, Mode: NonBlocking}).IsOk())

	var order []string
	id1, r1 := mgr.RegisterReclaim(TypeMemory, "driver-small", func(deficit uint64) uint64 {
		order = append(order, "small")
		return 10
	})
	require.True(t, r1.IsOk())
	_, r2 := mgr.RegisterReclaim(TypeMemory, "driver-large", func(deficit uint64) uint64 {
		order = append(order, "large")
		return 20
	})
	require.True(t, r2.IsOk())
	_ = id1

	// driver-small's most recent allocation is 10 bytes, driver-large's is
	// 90: the large owner's callback must run first under Emergency reclaim.
	st, ok := mgr.stateFor(TypeMemory)
	require.True(t, ok)
	st.ownerAllocated["driver-small"] = 10
	st.ownerAllocated["driver-large"] = 90

	// A 25-byte deficit: the large callback's 20 bytes do not cover it, so
	// the small callback runs next.
	res := mgr.Acquire(AcquireRequest{Type: TypeMemory, Size: 25, Mode: Emergency})
	require.True(t, res.IsOk())
	require.Len(t, order, 2)
	assert.Equal(t, []string{"large", "small"}, order)
}

func TestScopedHandleReleasesOnClose(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeAudioVoice, Budget{MaxBytes: 100, WarningPct: 50, CriticalPct: 90}).IsOk())

	res := mgr.Acquire(AcquireRequest{Type: TypeAudioVoice, Size: 50, Mode: NonBlocking})
	require.True(t, res.IsOk())

	scoped := NewScoped(mgr, res.Value())
	scoped.Close()

	stats, _ := mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 0, stats.CurrentBytes)

	// idempotent
	scoped.Close()
	stats, _ = mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 0, stats.CurrentBytes)
}

func TestScopedHandleTakeSuppressesRelease(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeAudioVoice, Budget{MaxBytes: 100, WarningPct: 50, CriticalPct: 90}).IsOk())

	res := mgr.Acquire(AcquireRequest{Type: TypeAudioVoice, Size: 50, Mode: NonBlocking})
	require.True(t, res.IsOk())

	scoped := NewScoped(mgr, res.Value())
	taken := scoped.Take()
	scoped.Close()

	stats, _ := mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 50, stats.CurrentBytes, "Take must suppress the automatic release")

	require.True(t, mgr.Release(taken).IsOk())
	stats, _ = mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 0, stats.CurrentBytes)
}

func TestScopedHandleShareCounting(t *testing.T) {
	mgr := New(nil)
	require.True(t, mgr.Configure(TypeAudioVoice, Budget{MaxBytes: 100, WarningPct: 50, CriticalPct: 90}).IsOk())

	res := mgr.Acquire(AcquireRequest{Type: TypeAudioVoice, Size: 50, Mode: NonBlocking})
	require.True(t, res.IsOk())

	scoped := NewScoped(mgr, res.Value())
	shared := scoped.Share()

	scoped.Close()
	stats, _ := mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 50, stats.CurrentBytes, "resource must survive while a share is outstanding")

	shared.Close()
	stats, _ = mgr.Stats(TypeAudioVoice)
	assert.EqualValues(t, 0, stats.CurrentBytes)
}
