package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedClock(times ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func snapshot(s *Store) entities.ConfigDocument {
	var out entities.ConfigDocument
	s.Do(func(doc entities.ConfigDocument) {
		data, err := encode(doc)
		if err != nil {
			panic(err)
		}
		out, err = decode(strings.NewReader(string(data)))
		if err != nil {
			panic(err)
		}
	})
	return out
}

func TestOpen_MissingFile(t *testing.T) {
	s := Open(newTestLogger(), filepath.Join(t.TempDir(), "guild_config.json"))

	s.Do(func(doc entities.ConfigDocument) {
		require.NotNil(t, doc)
		require.Empty(t, doc)
	})
}

func TestOpen_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Truncated", content: `{"1": {"categories": [`},
		{name: "NotAnObject", content: `[1, 2, 3]`},
		{name: "Null", content: `null`},
		{name: "Empty", content: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guild_config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s := Open(newTestLogger(), path)
			s.Do(func(doc entities.ConfigDocument) {
				require.NotNil(t, doc)
				require.Empty(t, doc)
			})
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guild_config.json")
	s := Open(newTestLogger(), path)

	s.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, "100")
		g.SupportChannelID = "200"
		g.Categories[0].NotifyRoleID = "300"
		g.Categories[0].AddCloseRole("301")
		g.Categories = append(g.Categories, entities.NewCategory("Sales", "Buy things", ""))
		g.OpenTickets["400"] = &entities.TicketEntry{
			ChannelID:   "400",
			ChannelName: "partnership-bob",
			OwnerID:     "500",
			ClaimedBy:   "600",
			Category:    "Partnership",
			MessageID:   "700",
		}
		entities.GetOrInit(doc, "101")
	})
	s.Save(context.Background())

	want := snapshot(s)

	reopened := Open(newTestLogger(), path)
	require.Equal(t, want, snapshot(reopened))

	reopened.Save(context.Background())
	require.Equal(t, want, snapshot(Open(newTestLogger(), path)))
}

func TestSave_LegacyNumericIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guild_config.json")
	legacy := `{"1180843473932419123": {"support_channel_id": 1180843473932419124, "categories": [], "open_tickets": {
		"1180843473932419125": {"channel_id": 1180843473932419125, "channel_name": "other-bob", "owner_id": 42, "claimed_by": null, "category": "Other", "message_id": 43}}}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := Open(newTestLogger(), path)
	s.Do(func(doc entities.ConfigDocument) {
		g := doc["1180843473932419123"]
		require.NotNil(t, g)
		require.Equal(t, custom.Snowflake("1180843473932419124"), g.SupportChannelID)
		require.Equal(t, custom.Snowflake("1180843473932419125"), g.OpenTickets["1180843473932419125"].ChannelID)
	})

	s.Save(context.Background())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"owner_id": "42"`)
}

func TestSave_Backups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guild_config.json")
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := Open(newTestLogger(), path,
		WithMaxBackups(2),
		WithClock(fixedClock(base, base.Add(time.Second), base.Add(2*time.Second), base.Add(3*time.Second))),
	)

	// The first save has nothing to back up.
	s.Save(context.Background())
	backups, err := s.Backups()
	require.NoError(t, err)
	require.Empty(t, backups)

	for i := 0; i < 3; i++ {
		s.Do(func(doc entities.ConfigDocument) {
			entities.GetOrInit(doc, fmt.Sprintf("%d", i))
		})
		s.Save(context.Background())
	}

	backups, err = s.Backups()
	require.NoError(t, err)
	require.Equal(t, []string{
		path + ".bak-20240501100001",
		path + ".bak-20240501100002",
	}, backups)

	// The newest backup holds the document as it was before the last save.
	data, err := os.ReadFile(backups[1])
	require.NoError(t, err)
	require.Contains(t, string(data), `"1"`)
	require.NotContains(t, string(data), `"2"`)
}

func TestSave_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guild_config.json")
	s := Open(newTestLogger(), path, WithMaxBackups(1))

	s.Save(context.Background())
	s.Save(context.Background())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.True(t, e.Name() == "guild_config.json" || strings.HasPrefix(e.Name(), "guild_config.json.bak-"),
			"unexpected file %s", e.Name())
	}
}

func TestSave_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guild_config.json")
	s := Open(newTestLogger(), path, WithMaxBackups(1))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Do(func(doc entities.ConfigDocument) {
				entities.GetOrInit(doc, fmt.Sprintf("%d", i))
			})
			s.Save(context.Background())
		}(i)
	}
	wg.Wait()

	reopened := Open(newTestLogger(), path)
	reopened.Do(func(doc entities.ConfigDocument) {
		require.Len(t, doc, 20)
	})
}

func TestSave_CancelledWhileWaiting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guild_config.json")
	s := Open(newTestLogger(), path)

	// Hold the write slot so the save has to wait.
	s.writeSlot <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Save(ctx)

	<-s.writeSlot
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSave_FallbackWhenAtomicWriteFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "guild_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	s := Open(newTestLogger(), path)
	s.Do(func(doc entities.ConfigDocument) {
		entities.GetOrInit(doc, "1")
	})

	// A read-only directory stops the temp file from being created, but the existing file can still be overwritten.
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	s.Save(context.Background())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"1"`)
}

func TestCheck(t *testing.T) {
	s := Open(newTestLogger(), filepath.Join(t.TempDir(), "guild_config.json"))
	require.NoError(t, s.Check(context.Background()))

	s = Open(newTestLogger(), filepath.Join(t.TempDir(), "missing", "guild_config.json"))
	require.Error(t, s.Check(context.Background()))
}
