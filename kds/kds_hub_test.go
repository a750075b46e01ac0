package kds

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestBroadcastReachesAllClients(t *testing.T) {
	utils.SilenceLoggers()
	hub := NewHub()
	staff, admin := &fakeConn{}, &fakeConn{}
	hub.RegisterClient(staff, "staff")
	hub.RegisterClient(admin, "admin")

	hub.BroadcastSessionStarted(models.TableSession{ID: "s1", TableNumber: "T1", Status: models.SessionActive})

	for _, c := range []*fakeConn{staff, admin} {
		require.Len(t, c.frames, 1)
		var msg struct {
			Event string              `json:"event"`
			Data  models.TableSession `json:"data"`
		}
		require.NoError(t, json.Unmarshal(c.frames[0], &msg))
		assert.Equal(t, EventSessionStarted, msg.Event)
		assert.Equal(t, "s1", msg.Data.ID)
	}
}

func TestBroadcastDropsBrokenClients(t *testing.T) {
	utils.SilenceLoggers()
	hub := NewHub()
	good, broken := &fakeConn{}, &fakeConn{fail: true}
	hub.RegisterClient(good, "staff")
	hub.RegisterClient(broken, "staff")

	hub.BroadcastOrderUpdate(models.Order{ID: "o1", Status: models.OrderReady})

	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, broken.closed)
	assert.Len(t, good.frames, 1)

	hub.UnregisterClient(good)
	hub.UnregisterClient(good)
	assert.Zero(t, hub.ClientCount())
	assert.True(t, good.closed)
}
