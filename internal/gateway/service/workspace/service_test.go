package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/gateway/repository/history"
	"accsetup/internal/llm"
	"accsetup/internal/setup"
)

var sel = advisor.Selection{Car: "BMW M4 GT3", Track: "Monza", Style: "Balanced"}

func zero(t *testing.T) string {
	t.Helper()
	raw, err := setup.Marshal(setup.Setup{})
	require.NoError(t, err)
	return string(raw)
}

func withTC1(t *testing.T, v string) string {
	return strings.Replace(zero(t), `"tractionControl1": 0`, `"tractionControl1": `+v, 1)
}

func newService(t *testing.T, reply llm.FakeReply) (*Service, *history.FileStore, *llm.FakeProvider) {
	t.Helper()
	f := llm.NewFakeProvider(reply)
	hist := history.NewMemoryStore()
	svc := New(Config{}, advisor.New(advisor.Config{APIKey: "k"}, f), catalog.Default(), hist, nil)
	return svc, hist, f
}

func TestGenerateAndRefine(t *testing.T) {
	svc, hist, _ := newService(t, llm.FakeSequence(zero(t), withTC1(t, "3")))
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)
	require.NotEmpty(t, v.ID)
	require.NotNil(t, v.Setup)
	assert.True(t, v.HasSession)
	assert.Equal(t, 1, v.Revision)
	assert.False(t, v.Busy)

	r, err := svc.Refine(ctx, v.ID, "understeer")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Revision)
	assert.Equal(t, 3.0, r.Setup.Electronics.TractionControl1)
	assert.Equal(t, []setup.Change{{Path: "electronics.tractionControl1", From: "0", To: "3"}}, r.Changes)

	recs, err := hist.List(ctx, r.SessionID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "", recs[0].Feedback)
	assert.Equal(t, history.KindGenerate, recs[0].Kind)
	assert.Equal(t, "understeer", recs[1].Feedback)
	assert.Equal(t, history.KindRefine, recs[1].Kind)
	assert.Equal(t, "Monza", recs[1].Track)

	viaSvc, err := svc.History(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, recs, viaSvc)
}

func TestRefineUnknownWorkspace(t *testing.T) {
	svc, _, f := newService(t, llm.FakeText(zero(t)))
	_, err := svc.Refine(context.Background(), "nope", "understeer")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, f.Sends())
}

func TestUnknownSelection(t *testing.T) {
	svc, _, f := newService(t, llm.FakeText(zero(t)))
	_, err := svc.Generate(context.Background(), "", advisor.Selection{Car: "Trabant", Track: "Monza", Style: "Balanced"})
	assert.ErrorIs(t, err, catalog.ErrUnknownOption)
	assert.Equal(t, 0, f.Sends())
}

func TestGenerateFailureClearsState(t *testing.T) {
	svc, _, _ := newService(t, llm.FakeSequence(zero(t), "not json"))
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)

	failed, err := svc.Generate(ctx, v.ID, sel)
	var pe *advisor.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, v.ID, failed.ID)
	assert.Nil(t, failed.Setup)
	assert.False(t, failed.HasSession)

	_, err = svc.Refine(ctx, v.ID, "understeer")
	var pre *advisor.PreconditionError
	assert.True(t, errors.As(err, &pre))
}

func TestRefineFailureKeepsState(t *testing.T) {
	svc, _, _ := newService(t, llm.FakeSequence(withTC1(t, "5"), "not json", withTC1(t, "6")))
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)

	failed, err := svc.Refine(ctx, v.ID, "understeer")
	require.Error(t, err)
	require.NotNil(t, failed.Setup)
	assert.Equal(t, 5.0, failed.Setup.Electronics.TractionControl1)
	assert.True(t, failed.HasSession)
	assert.Equal(t, 1, failed.Revision)

	ok, err := svc.Refine(ctx, v.ID, "understeer")
	require.NoError(t, err)
	assert.Equal(t, 6.0, ok.Setup.Electronics.TractionControl1)
}

func TestBusyWorkspace(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	reply := zero(t)
	svc, _, _ := newService(t, func(n int, _ string) (string, error) {
		if n == 1 {
			close(started)
			<-unblock
		}
		return reply, nil
	})
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refine(ctx, v.ID, "understeer")
		done <- err
	}()
	<-started

	got, err := svc.Get(v.ID)
	require.NoError(t, err)
	assert.True(t, got.Busy)

	_, err = svc.Refine(ctx, v.ID, "again")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = svc.Generate(ctx, v.ID, sel)
	assert.ErrorIs(t, err, ErrBusy)

	close(unblock)
	require.NoError(t, <-done)
	got, err = svc.Get(v.ID)
	require.NoError(t, err)
	assert.False(t, got.Busy)
	assert.Equal(t, 2, got.Revision)
}

func TestExport(t *testing.T) {
	svc, _, _ := newService(t, llm.FakeText(zero(t)))
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)

	ex, err := svc.Export(ctx, v.ID, "/api/exports/")
	require.NoError(t, err)
	assert.Equal(t, "bmw-m4-gt3/monza/"+v.SessionID+"-r1.json", ex.Key)
	assert.Equal(t, "/api/exports/"+ex.Key, ex.URL)

	raw, err := svc.ReadExport(ctx, ex.Key)
	require.NoError(t, err)
	st, err := setup.Parse(string(raw))
	require.NoError(t, err)
	assert.Equal(t, *v.Setup, st)
}

func TestExportWithoutSetup(t *testing.T) {
	svc, _, _ := newService(t, llm.FakeText("not json"))
	v, err := svc.Generate(context.Background(), "", sel)
	require.Error(t, err)

	_, err = svc.Export(context.Background(), v.ID, "/api/exports")
	assert.ErrorIs(t, err, ErrNoSetup)
}

func TestDeleteClosesSession(t *testing.T) {
	svc, _, _ := newService(t, llm.FakeText(zero(t)))
	ctx := context.Background()
	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)

	assert.True(t, svc.Delete(v.ID))
	assert.False(t, svc.Delete(v.ID))
	_, err = svc.Get(v.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkspacesExpire(t *testing.T) {
	f := llm.NewFakeProvider(llm.FakeText(zero(t)))
	svc := New(Config{TTL: 50 * time.Millisecond, Max: 4}, advisor.New(advisor.Config{APIKey: "k"}, f), catalog.Default(), nil, nil)
	v, err := svc.Generate(context.Background(), "", sel)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := svc.Get(v.ID)
		return errors.Is(err, ErrNotFound)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestActiveWorkspaceOutlivesTTL(t *testing.T) {
	f := llm.NewFakeProvider(llm.FakeText(zero(t)))
	svc := New(Config{TTL: 300 * time.Millisecond, Max: 4}, advisor.New(advisor.Config{APIKey: "k"}, f), catalog.Default(), nil, nil)
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)

	deadline := time.Now().Add(900 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		time.Sleep(100 * time.Millisecond)
		_, err := svc.Refine(ctx, v.ID, "understeer")
		require.NoError(t, err, "refine %d", i)
	}

	got, err := svc.Get(v.ID)
	require.NoError(t, err)
	assert.True(t, got.HasSession)

	assert.Eventually(t, func() bool {
		_, err := svc.Get(v.ID)
		return errors.Is(err, ErrNotFound)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRejectedSelectionKeepsWorkspace(t *testing.T) {
	svc, _, f := newService(t, llm.FakeText(withTC1(t, "4")))
	ctx := context.Background()

	v, err := svc.Generate(ctx, "", sel)
	require.NoError(t, err)
	sends := f.Sends()

	tests := []struct {
		name string
		sel  advisor.Selection
		want func(t *testing.T, err error)
	}{
		{"empty car", advisor.Selection{Car: " ", Track: "Monza", Style: "Balanced"}, func(t *testing.T, err error) {
			var ve *advisor.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "car", ve.Field)
		}},
		{"empty style", advisor.Selection{Car: "BMW M4 GT3", Track: "Monza"}, func(t *testing.T, err error) {
			var ve *advisor.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "style", ve.Field)
		}},
		{"unknown track", advisor.Selection{Car: "BMW M4 GT3", Track: "Nordschleife 24h", Style: "Balanced"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, catalog.ErrUnknownOption)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failed, err := svc.Generate(ctx, v.ID, tt.sel)
			tt.want(t, err)
			assert.Equal(t, v.ID, failed.ID)

			got, err := svc.Get(v.ID)
			require.NoError(t, err)
			assert.True(t, got.HasSession)
			assert.Equal(t, v.SessionID, got.SessionID)
			assert.Equal(t, sel, got.Selection)
			require.NotNil(t, got.Setup)
			assert.Equal(t, 4.0, got.Setup.Electronics.TractionControl1)
			assert.False(t, got.Busy)
		})
	}
	assert.Equal(t, sends, f.Sends())

	_, err = svc.Refine(ctx, v.ID, "understeer")
	assert.NoError(t, err)
}
