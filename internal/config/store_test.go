package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oicur0t/gelfwd/pkg/gelf"
)

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := NewStore(Watched{GraylogAddr: "a:1", Compression: gelf.CompressNone})

	snap := store.Snapshot()
	snap.GraylogAddr = "mutated:9"

	assert.Equal(t, "a:1", store.Snapshot().GraylogAddr)
}

func TestStoreReplaceRaisesChangeFlag(t *testing.T) {
	store := NewStore(Watched{GraylogAddr: "a:1"})
	assert.False(t, store.Changed())

	store.Replace(Watched{GraylogAddr: "b:2", GraylogAddrTTL: time.Minute})
	assert.True(t, store.Changed())
	assert.Equal(t, "b:2", store.Snapshot().GraylogAddr)

	store.Ack()
	assert.False(t, store.Changed())
	// the value survives the ack, only the signal is consumed
	assert.Equal(t, "b:2", store.Snapshot().GraylogAddr)
}
