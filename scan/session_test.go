package scan

import (
	"context"
	"testing"
	"time"

	"memscan/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionNarrowingCycle(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(10, 42, 10, 7, 10))

	session := NewSession(src, Int32)
	session.Constraints().AddConstraint(Equal(IntScalar(10)))

	// First pass: full collection, then filter
	snapshot, err := session.ScanPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.ElementCount(Int32))
	assert.Equal(t, 1, session.Passes())
	assert.Same(t, snapshot, session.Current())

	// The target changes: one survivor goes up, one goes down
	src.setMemory(0x1000, bytesOfInt32(11, 42, 10, 7, 9))

	session.Constraints().ClearConstraints()
	session.Constraints().AddConstraint(Increased())
	snapshot, err = session.ScanPass(context.Background())
	require.NoError(t, err)

	results := snapshot.Results(Int32, 0)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(0x1000), uint64(results[0].Address))
	assert.Equal(t, int64(11), results[0].Value.Int64())
	assert.Equal(t, 2, session.Passes())
}

func TestSessionExtraConstraintDoesNotTouchCollection(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(1, 2, 3))

	session := NewSession(src, Int32)
	session.Constraints().AddConstraint(GreaterThan(IntScalar(0)))

	snapshot, err := session.ScanPass(context.Background(), LessThan(IntScalar(3)))
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.ElementCount(Int32))

	// The merged constraint lived only in the executing clone
	assert.Equal(t, 1, session.Constraints().Len())
}

func TestSessionInvalidConstraintsBeforeAnyRead(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(1))

	session := NewSession(src, Int32)
	_, err := session.ScanPass(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConstraints)
	assert.Equal(t, 0, src.reads)
}

func TestSessionDeltaOnFirstPass(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(1))

	session := NewSession(src, Int32)
	session.Constraints().AddConstraint(Increased())

	_, err := session.ScanPass(context.Background())
	assert.ErrorIs(t, err, ErrMissingPriorSnapshot)
	assert.Equal(t, 0, src.reads)
	assert.Nil(t, session.Current())
}

func TestSessionFailedPassKeepsBaseline(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(5))

	session := NewSession(src, Int32)
	session.Constraints().AddConstraint(Equal(IntScalar(5)))

	baseline, err := session.ScanPass(context.Background())
	require.NoError(t, err)

	src.readErr = process.ErrProcessUnavailable
	_, err = session.ScanPass(context.Background())
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)

	assert.Same(t, baseline, session.Current())
	assert.Equal(t, 1, session.Passes())
}

func TestSessionReset(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(5))

	session := NewSession(src, Int32)
	session.Constraints().AddConstraint(Equal(IntScalar(5)))

	_, err := session.ScanPass(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session.Current())

	session.Reset()
	assert.Nil(t, session.Current())
	assert.Equal(t, 0, session.Passes())
}

func TestSessionTaskLifecycle(t *testing.T) {
	src := newFakeSource()
	src.addRegion(0x1000, "rw-p", bytesOfInt32(1, 2, 3))

	session := NewSession(src, Int32)
	task := session.StartPass(context.Background(), Equal(IntScalar(2)))

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}

	snapshot, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.ElementCount(Int32))
	assert.Equal(t, 1.0, task.Progress())
}

func TestSessionTaskCancel(t *testing.T) {
	src := newFakeSource()
	// Enough regions that cancellation lands mid-collection
	for i := 0; i < 64; i++ {
		src.addRegion(uint64(0x1000+i*0x1000), "rw-p", make([]byte, 4096))
	}
	src.readDelay = 5 * time.Millisecond

	session := NewSession(src, Int32)
	task := session.StartPass(context.Background(), Equal(IntScalar(0)))
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled task did not finish")
	}

	snapshot, err := task.Result()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, snapshot)
	assert.Nil(t, session.Current())
}
