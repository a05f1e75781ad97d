package runloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duzhanyuan/mech/internal/core"
	"github.com/duzhanyuan/mech/internal/testutil"
)

func newCore() Core {
	return core.NewCore(core.DefaultCapacity, core.DefaultHistoryDepth)
}

// start runs a loop for the duration of the test and returns its client
// plus a channel delivering Run's result.
func start(t *testing.T, factory Factory) (*Client, <-chan error) {
	t.Helper()
	client, loop := New(factory, core.NewCompiler(), WithLogger(testutil.NewTestLogger(t)))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		errc <- loop.Run(ctx)
		close(finished)
	}()
	t.Cleanup(func() {
		client.Close()
		cancel()
		<-finished
	})
	return client, errc
}

func TestExchange_Code(t *testing.T) {
	client, _ := start(t, newCore)

	resp, err := client.Exchange(Request{Kind: RequestCode, Source: "x = 1 + 1"})
	require.NoError(t, err)
	assert.Equal(t, ResponseNewBlocksCompiled, resp.Kind)
	assert.Equal(t, 1, resp.Count)
	assert.NoError(t, resp.Err)

	resp, err = client.Exchange(Request{Kind: RequestCode, Source: "a = 1\nb = a + 1\nc = b * 2"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count)
}

func TestExchange_CodeCompileError(t *testing.T) {
	client, _ := start(t, newCore)

	resp, err := client.Exchange(Request{Kind: RequestCode, Source: "x = "})
	require.NoError(t, err, "compile errors are reported in the response")
	assert.Equal(t, ResponseNewBlocksCompiled, resp.Kind)
	assert.Equal(t, 0, resp.Count)
	assert.Error(t, resp.Err)
}

func TestExchange_Table(t *testing.T) {
	client, _ := start(t, newCore)

	_, err := client.Exchange(Request{Kind: RequestCode, Source: "x = [[1, 2], [3, 4]]"})
	require.NoError(t, err)

	resp, err := client.Exchange(Request{Kind: RequestTable, Table: core.HashName("x")})
	require.NoError(t, err)
	require.NotNil(t, resp.Table)
	assert.Equal(t, 2, resp.Table.Rows)

	resp, err = client.Exchange(Request{Kind: RequestTable, Table: core.HashName("nope")})
	require.NoError(t, err)
	assert.Equal(t, ResponseTable, resp.Kind)
	assert.Nil(t, resp.Table, "missing tables are not an error")
}

func TestExchange_PauseResume(t *testing.T) {
	client, _ := start(t, newCore)

	resp, err := client.Exchange(Request{Kind: RequestPause})
	require.NoError(t, err)
	assert.Equal(t, ResponsePause, resp.Kind)

	resp, err = client.Exchange(Request{Kind: RequestCode, Source: "x = 5"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)

	resp, err = client.Exchange(Request{Kind: RequestTable, Table: core.HashName("x")})
	require.NoError(t, err)
	assert.Nil(t, resp.Table, "paused core does not step")

	resp, err = client.Exchange(Request{Kind: RequestResume})
	require.NoError(t, err)
	assert.Equal(t, ResponseResume, resp.Kind)
	assert.NoError(t, resp.Err)

	resp, err = client.Exchange(Request{Kind: RequestTable, Table: core.HashName("x")})
	require.NoError(t, err)
	require.NotNil(t, resp.Table)
	assert.Equal(t, "5", resp.Table.At(0, 0).String())
}

func TestExchange_Clear(t *testing.T) {
	client, _ := start(t, newCore)

	_, err := client.Exchange(Request{Kind: RequestCode, Source: "x = 1"})
	require.NoError(t, err)

	resp, err := client.Exchange(Request{Kind: RequestClear})
	require.NoError(t, err)
	assert.Equal(t, ResponseClear, resp.Kind)

	resp, err = client.Exchange(Request{Kind: RequestTable, Table: core.HashName("x")})
	require.NoError(t, err)
	assert.Nil(t, resp.Table)
}

func TestExchange_PrintCoreAndRuntime(t *testing.T) {
	client, _ := start(t, newCore)

	_, err := client.Exchange(Request{Kind: RequestCode, Source: "x = 1"})
	require.NoError(t, err)

	resp, err := client.Exchange(Request{Kind: RequestPrintCore})
	require.NoError(t, err)
	assert.Equal(t, ResponseText, resp.Kind)
	assert.Contains(t, resp.Text, "#x")

	resp, err = client.Exchange(Request{Kind: RequestPrintRuntime})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Runtime: 1 blocks")
}

func TestSend_EnforcesLockstep(t *testing.T) {
	client, _ := start(t, newCore)

	require.NoError(t, client.Send(Request{Kind: RequestPause}))
	err := client.Send(Request{Kind: RequestResume})
	assert.ErrorIs(t, err, ErrRequestOutstanding)

	resp, err := client.Receive()
	require.NoError(t, err)
	assert.Equal(t, ResponsePause, resp.Kind)

	_, err = client.Receive()
	assert.ErrorIs(t, err, ErrNoRequest)
}

func TestStop_MakesRuntimeUnavailable(t *testing.T) {
	client, errc := start(t, newCore)

	resp, err := client.Exchange(Request{Kind: RequestStop})
	require.NoError(t, err)
	assert.Equal(t, ResponseStopped, resp.Kind)
	require.NoError(t, <-errc)

	_, err = client.Exchange(Request{Kind: RequestPrintCore})
	assert.ErrorIs(t, err, ErrRuntimeUnavailable)
}

type panickingCore struct{ Core }

func (panickingCore) Step() error { panic("boom") }

func TestPanic_TerminatesLoop(t *testing.T) {
	client, errc := start(t, func() Core { return panickingCore{Core: newCore()} })

	require.NoError(t, client.Send(Request{Kind: RequestCode, Source: "x = 1"}))
	_, err := client.Receive()
	assert.ErrorIs(t, err, ErrRuntimeUnavailable)

	runErr := <-errc
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "boom")
}

func TestClose_EndsLoop(t *testing.T) {
	client, errc := start(t, newCore)
	client.Close()
	client.Close()

	assert.NoError(t, <-errc)
	_, err := client.Exchange(Request{Kind: RequestPause})
	assert.ErrorIs(t, err, ErrRuntimeUnavailable)
}
