package project

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/storage"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/hmi-editor/backend/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *testutil.MockStorage) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := testutil.NewMockStorage()
	svc := NewService(store, logrus.NewEntry(logger))
	require.NoError(t, svc.Load(testutil.SampleProject()))
	return svc, store
}

func TestService_GetScriptsReturnsCopy(t *testing.T) {
	svc, _ := newTestService(t)

	scripts := svc.GetScripts()
	require.Len(t, scripts, 4)
	scripts[0].Name = "changed"
	scripts[0].Parameters[1].Name = "changed"

	again := svc.GetScripts()
	assert.Equal(t, "scale_s1", again[0].Name)
	assert.Equal(t, "gain", again[0].Parameters[1].Name)
}

func TestService_SubscribeLoad(t *testing.T) {
	svc, _ := newTestService(t)

	calls := 0
	sub := svc.SubscribeLoad(func() { calls++ })
	assert.Equal(t, 1, svc.Subscribers())

	require.NoError(t, svc.Load(models.NewProjectData()))
	assert.Equal(t, 1, calls)

	svc.SetScripts([]models.Script{testutil.LinearScript("n1")})
	assert.Equal(t, 2, calls)
	assert.Len(t, svc.GetScripts(), 1)

	require.NoError(t, sub.Unsubscribe())
	assert.ErrorIs(t, sub.Unsubscribe(), ErrAlreadyUnsubscribed)
	assert.Equal(t, 0, svc.Subscribers())

	svc.SetScripts(nil)
	assert.Equal(t, 2, calls)
	assert.NotNil(t, svc.GetScripts())
}

func TestService_SubscriberMayReadProject(t *testing.T) {
	svc, _ := newTestService(t)

	var seen int
	svc.SubscribeLoad(func() { seen = len(svc.GetScripts()) })
	svc.SetScripts([]models.Script{testutil.LinearScript("a"), testutil.LinearScript("b")})

	assert.Equal(t, 2, seen)
}

func TestService_LoadCopiesInput(t *testing.T) {
	svc, _ := newTestService(t)

	p := testutil.SampleProject()
	require.NoError(t, svc.Load(p))
	p.Devices["plc1"].Name = "mutated"

	got, err := svc.Project()
	require.NoError(t, err)
	assert.Equal(t, "PLC 1", got.Devices["plc1"].Name)

	assert.Error(t, svc.Load(nil))
}

func TestService_Snapshots(t *testing.T) {
	svc, store := newTestService(t)

	info, err := svc.SaveSnapshot("before")
	require.NoError(t, err)
	assert.Equal(t, 1, store.SnapshotCount())

	require.NoError(t, svc.Load(models.NewProjectData()))
	calls := 0
	svc.SubscribeLoad(func() { calls++ })

	loaded, err := svc.LoadSnapshot(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", loaded.Name)
	assert.Equal(t, 1, calls)
	p, _ := svc.Project()
	assert.Contains(t, p.Devices, "plc1")

	_, err = svc.LoadSnapshot("missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	store.SaveErr = errors.New("disk full")
	_, err = svc.SaveSnapshot("after")
	assert.ErrorContains(t, err, "disk full")
}

func TestService_Apply(t *testing.T) {
	svc, _ := newTestService(t)

	payload, _ := json.Marshal(models.Text{Name: "greeting", Value: "hello"})
	require.NoError(t, svc.Apply(models.CmdSetText, payload))
	p, _ := svc.Project()
	require.Len(t, p.Texts, 1)

	err := svc.Apply("bogus", payload)
	assert.True(t, errors.Is(err, models.ErrUnknownCommand))
}

func TestService_Tags(t *testing.T) {
	svc, _ := newTestService(t)

	dev, tags, err := svc.Tags("plc1", []string{"t2", "t1"})
	require.NoError(t, err)
	assert.Equal(t, "plc1", dev.ID)
	require.Len(t, tags, 2)
	assert.Equal(t, 120, tags[0].Daq.Interval)

	tags[0].Name = "changed"
	_, again, _ := svc.Tags("plc1", []string{"t2"})
	assert.Equal(t, "tag_t2", again[0].Name)

	dev, _, err = svc.Tags(models.ServerDeviceID, []string{"st1"})
	require.NoError(t, err)
	assert.True(t, dev.IsServer())

	_, _, err = svc.Tags("nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Tags("plc1", []string{"t9"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ApplyTagOption(t *testing.T) {
	svc, _ := newTestService(t)

	opt := &models.TagOption{
		Daq:               models.TagDaq{Enabled: true, Interval: 5, Restored: true},
		Scale:             &models.TagScale{Mode: models.ScaleModeConvertTickTime},
		ScaleReadFunction: "s2",
		ScaleReadParams:   "[]",
	}
	require.NoError(t, svc.ApplyTagOption("plc1", []string{"t1", "t2"}, opt))

	_, tags, err := svc.Tags("plc1", []string{"t1", "t2"})
	require.NoError(t, err)
	for _, tag := range tags {
		assert.Equal(t, 5, tag.Daq.Interval)
		assert.True(t, tag.Daq.Restored)
		assert.Equal(t, models.ScaleModeConvertTickTime, tag.Scale.Mode)
		assert.Equal(t, "s2", tag.ScaleReadFunction)
	}

	err = svc.ApplyTagOption("plc1", []string{"t1", "missing"}, &models.TagOption{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, tags, _ = svc.Tags("plc1", []string{"t1"})
	assert.Equal(t, 5, tags[0].Daq.Interval, "nothing written when an id is unknown")

	assert.Error(t, svc.ApplyTagOption("plc1", nil, nil))
}

func TestService_DrivesDialogReload(t *testing.T) {
	svc, _ := newTestService(t)
	logger, _ := test.NewNullLogger()

	d, err := tagoptions.Open(svc, tagoptions.Data{}, logrus.NewEntry(logger))
	require.NoError(t, err)
	require.Len(t, d.Scripts(), 2)

	svc.SetScripts([]models.Script{testutil.ValueOnlyScript("only")})
	require.Len(t, d.Scripts(), 1)
	assert.Equal(t, "only", d.Scripts()[0].ID)

	d.Close()
	assert.Equal(t, 0, svc.Subscribers())
}
