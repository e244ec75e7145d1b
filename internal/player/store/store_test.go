package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestBundleRoundTrip(t *testing.T) {
	s := newTestStore(t)

	serverTime := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	original := &v1alpha1.ScreenResponse{
		Config: v1alpha1.TerminalConfig{
			InternalName: "lobby-1",
			ScreenType:   v1alpha1.ScreenTypeSalon,
			Screensaver:  []string{"/img/idle.png"},
		},
		Data: v1alpha1.ScreenData{
			Agenda: &v1alpha1.AgendaPayload{
				DataType: v1alpha1.DataTypeAgenda,
				Events: []v1alpha1.ScheduledEvent{
					{
						Title:    "conference",
						RoomName: "Salon A",
						StartsAt: serverTime,
						EndsAt:   serverTime.Add(2 * time.Hour),
					},
				},
			},
		},
		ServerTime: &serverTime,
	}

	require.NoError(t, s.SaveBundle("lobby-1", original))

	loaded, err := s.LoadBundle("lobby-1")
	require.NoError(t, err)
	assert.Equal(t, original.Config, loaded.Config)
	require.NotNil(t, loaded.Data.Agenda)
	assert.Equal(t, original.Data.Agenda.Events, loaded.Data.Agenda.Events)
	require.NotNil(t, loaded.ServerTime)
	assert.True(t, serverTime.Equal(*loaded.ServerTime))
}

func TestLoadBundle_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadBundle("never-seen")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestLoadBundle_Corrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "terminal-lobby-1.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = s.LoadBundle("lobby-1")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadBundle_UnknownSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "terminal-lobby-1.json")
	record := `{"schema_version": 99, "saved_at": "2026-03-10T12:00:00Z", "payload": {}}`
	require.NoError(t, os.WriteFile(path, []byte(record), 0o644))

	_, err = s.LoadBundle("lobby-1")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOffsetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveOffset(2*time.Minute))

	offset, err := s.LoadOffset()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, offset)

	// Negative offsets survive too
	require.NoError(t, s.SaveOffset(-45*time.Second))
	offset, err = s.LoadOffset()
	require.NoError(t, err)
	assert.Equal(t, -45*time.Second, offset)
}

func TestLoadOffset_Missing(t *testing.T) {
	s := newTestStore(t)

	offset, err := s.LoadOffset()
	assert.ErrorIs(t, err, ErrNoRecord)
	assert.Equal(t, time.Duration(0), offset)
}

func TestSaveBundle_Overwrite(t *testing.T) {
	s := newTestStore(t)

	first := &v1alpha1.ScreenResponse{Config: v1alpha1.TerminalConfig{InternalName: "v1"}}
	second := &v1alpha1.ScreenResponse{Config: v1alpha1.TerminalConfig{InternalName: "v2"}}

	require.NoError(t, s.SaveBundle("lobby-1", first))
	require.NoError(t, s.SaveBundle("lobby-1", second))

	loaded, err := s.LoadBundle("lobby-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Config.InternalName)
}
