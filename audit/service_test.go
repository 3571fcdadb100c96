package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/kasuganosora/slotgrid/model"
	"github.com/kasuganosora/slotgrid/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	svc.Log(Entry{
		TraceID:  "trace-123",
		Action:   "drop",
		TileID:   "tile-1",
		ItemID:   "Material_Wood",
		Qty:      4,
		FromSlot: "r0c0",
		ToSlot:   "r0c1",
		Result:   "MergedFully",
		Detail:   map[string]float32{"x": 1, "y": 2},
	})

	// Stop flushes remaining entries
	svc.Stop(context.Background())

	var logs []model.PlacementLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "drop", logs[0].Action)
	assert.Equal(t, "r0c1", logs[0].ToSlot)
	assert.Equal(t, "MergedFully", logs[0].Result)
	assert.JSONEq(t, `{"x":1,"y":2}`, string(logs[0].Detail))
}

func TestLog_ErrorRecorded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	svc.Log(Entry{Action: "drop", Err: errors.New("origin slot rejected")})
	svc.Stop(context.Background())

	var logs []model.PlacementLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "origin slot rejected", logs[0].Error)
}

func TestLog_MultipleLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < 150; i++ {
		svc.Log(Entry{Action: "spawn", Qty: i})
	}
	svc.Stop(context.Background())

	var count int64
	require.NoError(t, db.Model(&model.PlacementLog{}).Count(&count).Error)
	assert.Equal(t, int64(150), count)
}

func TestStop_Twice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	svc.Stop(context.Background())
	assert.NotPanics(t, func() { svc.Stop(context.Background()) })
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", TraceID(ctx))
	assert.Equal(t, ctx, WithTraceID(ctx, ""))
	assert.Equal(t, "abc", TraceID(WithTraceID(ctx, "abc")))
}

func TestByTrace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Log(Entry{TraceID: "t-1", Action: "after_spawn", ItemID: "Material_Wood", Qty: 3})
	svc.Log(Entry{TraceID: "t-2", Action: "after_spawn"})
	svc.Log(Entry{TraceID: "t-1", Action: "after_place", Result: "MergedFully"})
	svc.Stop(context.Background())

	logs, err := svc.ByTrace(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "after_spawn", logs[0].Action)
	assert.Equal(t, "MergedFully", logs[1].Result)
}
