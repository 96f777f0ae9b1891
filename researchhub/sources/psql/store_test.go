package psql

import (
	"context"
	"fmt"
	"testing"
	"time"

	"researchhub/researchhub/sources"
	"researchhub/researchhub/sources/storetest"
	"researchhub/researchhub/utils/ids"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, now func() time.Time) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ids.New())
	s, err := Open(context.Background(), gormsqlite.Open(dsn), WithClock(now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) sources.Store {
		return openTestStore(t, now)
	})
}

func TestPingAndDriver(t *testing.T) {
	s := openTestStore(t, storetest.NewClock().Now)
	require.NoError(t, s.Ping(context.Background()))
	require.Equal(t, "postgres", s.Driver())
}
