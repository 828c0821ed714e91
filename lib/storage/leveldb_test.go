package storage

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelDBBackendInitMemStorage(t *testing.T) {
	st := &LevelDBBackend{}
	defer st.Close()

	config, _ := NewConfigFromString("memory://")
	if err := st.Init(config); err != nil {
		t.Errorf("failed to initialize mem db: %v", err)
	}
}

func TestLevelDBBackendNew(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	input := map[int]string{
		90: "99",
		91: "91",
		92: "92",
	}
	if err := st.New(key, input); err != nil {
		t.Errorf("failed to 'New' in leveldb: %v", err)
		return
	}

	fetched := map[int]string{}
	err := st.Get(key, &fetched)
	if err != nil {
		t.Errorf("failed to 'Get' in leveldb: %v", err)
		return
	}

	if !reflect.DeepEqual(input, fetched) {
		t.Errorf("failed to 'Get' the same input in leveldb")
		return
	}

	if err := st.New(key, input); err == nil {
		t.Errorf("'New' only for new key in leveldb")
		return
	}
}

func TestLevelDBBackendHas(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	if exists, _ := st.Has(key); exists {
		t.Error("failed to 'Has' in leveldb")
		return
	}

	st.New(key, 10)

	if exists, _ := st.Has(key); !exists {
		t.Error("failed to 'Has' in leveldb")
		return
	}

	st.Remove(key)
	if exists, _ := st.Has(key); exists {
		t.Error("failed to 'Remove' in leveldb")
		return
	}
}

func TestLevelDBBackendSet(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"

	if err := st.Set(key, 10); err == nil {
		t.Error("'Set' must fail before 'New'")
		return
	}

	st.New(key, 10)

	if err := st.Set(key, 20); err != nil {
		t.Errorf("failed to 'Set' in leveldb: %v", err)
		return
	}

	var fetched int
	st.Get(key, &fetched)
	require.Equal(t, 20, fetched)
}

func TestLevelDBIterator(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	total := 30
	for i := 0; i < total; i++ {
		st.New(fmt.Sprintf("item-%03d", i), i)
	}

	var fetched []uint64
	iterFunc, closeFunc := st.GetIterator("item-", nil)
	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}
		var v uint64
		require.NoError(t, st.Get(string(item.Key), &v))
		fetched = append(fetched, v)
	}
	closeFunc()

	require.Equal(t, total, len(fetched))
	for i, v := range fetched {
		require.Equal(t, uint64(i), v)
	}
}

func TestLevelDBIteratorLimit(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	total := 30
	for i := 0; i < total; i++ {
		st.New(fmt.Sprintf("item-%03d", i), i)
	}

	var count int
	options := NewDefaultListOptions(false, nil, 10)
	iterFunc, closeFunc := st.GetIterator("item-", options)
	for {
		_, hasNext := iterFunc()
		if !hasNext {
			break
		}
		count++
	}
	closeFunc()

	require.Equal(t, 10, count)
}

func TestLevelDBBackendTransactionNew(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	ts, err := st.OpenTransaction()
	require.NoError(t, err)

	key := "showme"
	require.NoError(t, ts.New(key, 10))

	// not visible from the backend until commit
	exists, _ := st.Has(key)
	require.False(t, exists)

	require.NoError(t, ts.Commit())

	exists, _ = st.Has(key)
	require.True(t, exists)
}

func TestLevelDBBackendTransactionDiscard(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	ts, err := st.OpenTransaction()
	require.NoError(t, err)

	key := "showme"
	require.NoError(t, ts.New(key, 10))
	require.NoError(t, ts.Discard())

	exists, _ := st.Has(key)
	require.False(t, exists)
}
