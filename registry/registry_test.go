package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/flight-hal/capmodel"
	"github.com/birbparty/flight-hal/result"
)

type fakeDriver struct {
	name      string
	version   Version
	priority  int32
	available bool
	active    bool
	mask      capmodel.Mask
	fallback  capmodel.Mask
	tier      capmodel.PerformanceTier
	initErr   result.Error
	initCalls int
}

func (f *fakeDriver) InterfaceName() string { return "test" }
func (f *fakeDriver) DriverName() string    { return f.name }
func (f *fakeDriver) Version() Version      { return f.version }
func (f *fakeDriver) Priority() int32       { return f.priority }
func (f *fakeDriver) Initialize() result.Result[result.Unit] {
	f.initCalls++
	if !f.initErr.Equal(result.Error{}) {
		return result.Err[result.Unit](f.initErr)
	}
	f.active = true
	return result.Ok(result.Unit{})
}
func (f *fakeDriver) Shutdown() result.Result[result.Unit] {
	f.active = false
	return result.Ok(result.Unit{})
}
func (f *fakeDriver) IsActive() bool    { return f.active }
func (f *fakeDriver) IsAvailable() bool { return f.available }
func (f *fakeDriver) Supports(c capmodel.Capability) bool { return f.mask.Supports(c) }
func (f *fakeDriver) Mask() capmodel.Mask                 { return f.mask }
func (f *fakeDriver) List() []capmodel.Capability         { return f.mask.List() }
func (f *fakeDriver) Tier() capmodel.PerformanceTier       { return f.tier }
func (f *fakeDriver) Platform() capmodel.PlatformDescriptor {
	return capmodel.PlatformDescriptor{Name: "test"}
}
func (f *fakeDriver) HasFallback(c capmodel.Capability) bool { return f.fallback.Supports(c) }

func infoFor(d *fakeDriver) DriverInfo {
	return DriverInfo{
		Name:           d.name,
		VersionInfo:    d.version,
		CapabilityMask: d.mask,
		Priority:       d.priority,
		Tier:           d.tier,
		Instance:       d,
	}
}

// Scenario 1 (§8): priority 50 beats priority 10; after unregistering the
// winner, resolution falls back to the remaining driver.
func TestScenarioPriorityOrderingAndUnregister(t *testing.T) {
	reg := New(0)

	low := &fakeDriver{name: "low", priority: 10, available: true}
	high := &fakeDriver{name: "high", priority: 50, available: true}

	require.True(t, reg.Register("audio", infoFor(low)).IsOk())
	require.True(t, reg.Register("audio", infoFor(high)).IsOk())

	res := reg.Resolve("audio", CapabilityRequirements{})
	require.True(t, res.IsOk())
	assert.Equal(t, "high", res.Value().DriverName())

	require.True(t, reg.Unregister("audio", "high").IsOk())

	res = reg.Resolve("audio", CapabilityRequirements{})
	require.True(t, res.IsOk())
	assert.Equal(t, "low", res.Value().DriverName())
}

// Scenario 6 (§8): an unavailable higher-priority driver is skipped but
// remains registered; the lower-priority available driver is returned.
func TestScenarioUnavailableDriverSkippedNotUnregistered(t *testing.T) {
	reg := New(0)

	unavailable := &fakeDriver{name: "primary", priority: 100, available: false}
	fallback := &fakeDriver{name: "secondary", priority: 10, available: true}

	require.True(t, reg.Register("gfx", infoFor(unavailable)).IsOk())
	require.True(t, reg.Register("gfx", infoFor(fallback)).IsOk())

	res := reg.Resolve("gfx", CapabilityRequirements{})
	require.True(t, res.IsOk())
	assert.Equal(t, "secondary", res.Value().DriverName())

	all := reg.GetAll("gfx")
	require.True(t, all.IsOk())
	assert.Len(t, all.Value(), 2)
}

func TestResolveNoCandidatesReturnsDriverNotLoaded(t *testing.T) {
	reg := New(0)
	res := reg.Resolve("nonexistent", CapabilityRequirements{})
	require.True(t, res.IsErr())
	assert.True(t, res.ErrorValue().Equal(result.New(result.Driver, CodeDriverNotLoaded, "")))
}

func TestResolveNeverReturnsDriverFailingRequirements(t *testing.T) {
	reg := New(0)
	d := &fakeDriver{name: "d1", priority: 1, available: true, mask: capmodel.Mask(capmodel.CapThreading)}
	require.True(t, reg.Register("net", infoFor(d)).IsOk())

	req := CapabilityRequirements{RequiredMask: capmodel.Mask(capmodel.CapNetworking)}
	res := reg.Resolve("net", req)
	require.True(t, res.IsErr())
}

func TestResolveIsDeterministic(t *testing.T) {
	reg := New(0)
	a := &fakeDriver{name: "a", priority: 5, available: true}
	b := &fakeDriver{name: "b", priority: 5, available: true}
	require.True(t, reg.Register("io", infoFor(a)).IsOk())
	require.True(t, reg.Register("io", infoFor(b)).IsOk())

	first := reg.Resolve("io", CapabilityRequirements{})
	require.True(t, first.IsOk())
	for i := 0; i < 5; i++ {
		again := reg.Resolve("io", CapabilityRequirements{})
		require.True(t, again.IsOk())
		assert.Equal(t, first.Value().DriverName(), again.Value().DriverName())
	}
	// earlier registration (a) wins the tie.
	assert.Equal(t, "a", first.Value().DriverName())
}

func TestCacheInvalidatedOnMutation(t *testing.T) {
	reg := New(0)
	a := &fakeDriver{name: "a", priority: 1, available: true}
	require.True(t, reg.Register("net", infoFor(a)).IsOk())

	res := reg.Resolve("net", CapabilityRequirements{})
	require.True(t, res.IsOk())
	assert.Equal(t, "a", res.Value().DriverName())

	b := &fakeDriver{name: "b", priority: 100, available: true}
	require.True(t, reg.Register("net", infoFor(b)).IsOk())

	res = reg.Resolve("net", CapabilityRequirements{})
	require.True(t, res.IsOk())
	assert.Equal(t, "b", res.Value().DriverName())
}

func TestInitializeAggregatesFailures(t *testing.T) {
	reg := New(0)
	ok := &fakeDriver{name: "ok", priority: 1, available: true}
	bad := &fakeDriver{name: "bad", priority: 2, available: true,
		initErr: result.New(result.Hardware, 1, "device busy")}

	require.True(t, reg.Register("io", infoFor(ok)).IsOk())
	require.True(t, reg.Register("io", infoFor(bad)).IsOk())

	res := reg.Initialize("io")
	require.True(t, res.IsErr())
	assert.Equal(t, result.Internal, res.ErrorValue().Category)
	assert.Contains(t, res.ErrorValue().Context, "bad")
	assert.Equal(t, 1, ok.initCalls)
	assert.Equal(t, 1, bad.initCalls)
}

func TestRegisterRequiresFactoryOrInstance(t *testing.T) {
	reg := New(0)
	res := reg.Register("io", DriverInfo{Name: "broken"})
	require.True(t, res.IsErr())
	assert.Equal(t, result.Configuration, res.ErrorValue().Category)
	assert.Equal(t, CodeInvalidParameter, res.ErrorValue().Code)
}

func TestFallbackDriversConsultedAfterRankedExhausted(t *testing.T) {
	reg := New(0)
	primary := &fakeDriver{
		name: "primary", priority: 100, available: false,
		mask: capmodel.Mask(capmodel.CapNetworking),
	}
	// secondary lacks the required capability, so it is excluded from the
	// normal ranked candidate walk and reachable only via primary's
	// advisory FallbackDrivers list.
	secondary := &fakeDriver{name: "secondary", priority: 1, available: true}

	primaryInfo := infoFor(primary)
	primaryInfo.FallbackDrivers = []string{"secondary"}
	require.True(t, reg.Register("audio", primaryInfo).IsOk())
	require.True(t, reg.Register("audio", infoFor(secondary)).IsOk())

	req := CapabilityRequirements{RequiredMask: capmodel.Mask(capmodel.CapNetworking)}
	res := reg.Resolve("audio", req)
	require.True(t, res.IsOk())
	assert.Equal(t, "secondary", res.Value().DriverName())
}
