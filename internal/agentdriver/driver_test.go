package agentdriver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDriver_StartLM_UnknownBinary(t *testing.T) {
	d := New()
	_, err := d.StartLM(context.Background(), LMSpec{Binary: "definitely-not-a-real-binary-xyz"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBinaryNotFound)
}

func TestDriver_StartLM_AndWaitForExit(t *testing.T) {
	d := New()
	h, err := d.StartLM(context.Background(), LMSpec{Binary: "true"})
	require.NoError(t, err)
	require.Positive(t, h.PID)

	select {
	case err := <-h.Exit:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit in time")
	}
}

func TestDriver_TerminateLM_GracefulExit(t *testing.T) {
	d := New()
	h, err := d.StartLM(context.Background(), LMSpec{Binary: "sleep", Args: []string{"0.1"}})
	require.NoError(t, err)

	err = d.TerminateLM(context.Background(), h, TerminateOptions{GracePeriod: time.Second})
	require.NoError(t, err)
}

func TestDriver_TerminateLM_ForceKillsAfterGracePeriod(t *testing.T) {
	d := New()
	h, err := d.StartLM(context.Background(), LMSpec{Binary: "sleep", Args: []string{"30"}})
	require.NoError(t, err)

	start := time.Now()
	err = d.TerminateLM(context.Background(), h, TerminateOptions{GracePeriod: 100 * time.Millisecond})
	require.NoError(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestDriver_TerminateLM_NilHandleIsNoop(t *testing.T) {
	d := New()
	require.NoError(t, d.TerminateLM(context.Background(), nil, TerminateOptions{}))
}

func TestBinaryAvailability_Memoizes(t *testing.T) {
	b := newBinaryAvailability()
	_, err1 := b.resolve("ls")
	_, err2 := b.resolve("ls")
	require.NoError(t, err1)
	require.NoError(t, err2)

	_, err := b.resolve("definitely-not-a-real-binary-xyz")
	require.Error(t, err)
}
