package store

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mustafizur/chat/backend/internal/metrics"
	"github.com/mustafizur/chat/backend/internal/model/chat"
	"github.com/mustafizur/chat/backend/internal/storage/kv"
)

type failingKV struct {
	kv.Store
	err error
}

func (f failingKV) Get(string) ([]byte, error) { return nil, f.err }
func (f failingKV) Set(string, []byte) error { return f.err }
func (f failingKV) Keys(string) ([]string, error) { return nil, f.err }

func sampleMessages() []chat.Message {
	return []chat.Message{
		{ID: "1", Text: "hello", Timestamp: 1700000000000, Sender: chat.SenderMe},
		{ID: "2", Text: "Got it!", Timestamp: 1700000001000, Sender: chat.SenderThem},
		{ID: "3", Text: "  spaced  ", Timestamp: 1700000002000, Sender: chat.SenderMe},
	}
}

func TestKeyDerivation(t *testing.T) {
	s := New(kv.NewMemory(), "", nil)
	assert.Equal(t, "mustafizur-chat/messages/alice", s.Key("alice"))

	custom := New(kv.NewMemory(), "demo", nil)
	assert.Equal(t, "demo/messages/alice", custom.Key("alice"))
	assert.NotEqual(t, custom.Key("a/b"), custom.Key("a"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(kv.NewMemory(), "", nil)
	want := sampleMessages()

	s.Save("alice", want)
	s.Save("alice", s.Load("alice"))

	assert.Equal(t, want, s.Load("alice"))
}

func TestLoadMissingIsEmpty(t *testing.T) {
	s := New(kv.NewMemory(), "", nil)
	got := s.Load("nobody")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadFailSoft(t *testing.T) {
	cases := map[string]string{
		"truncated": `{not json`,
		"number":    `42`,
		"object":    `{"id":"1"}`,
		"null":      `null`,
		"string":    `"hello"`,
		"empty":     ``,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			backend := kv.NewMemory()
			s := New(backend, "", nil)
			require.NoError(t, backend.Set(s.Key("alice"), []byte(raw)))

			got := s.Load("alice")
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestLoadBackendErrorIsEmpty(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(failingKV{err: errors.New("disk gone")}, "", metrics.New(reg))
	assert.Empty(t, s.Load("alice"))
}

func TestSaveSwallowsBackendErrors(t *testing.T) {
	s := New(failingKV{err: errors.New("quota exceeded")}, "", nil)
	assert.NotPanics(t, func() { s.Save("alice", sampleMessages()) })
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	backend := kv.NewMemory()
	s := New(backend, "", nil)
	s.Save("bob", nil)

	raw, err := backend.Get(s.Key("bob"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestPersistedFormat(t *testing.T) {
	backend := kv.NewMemory()
	s := New(backend, "", nil)
	s.Save("alice", sampleMessages()[:1])

	raw, err := backend.Get("mustafizur-chat/messages/alice")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","text":"hello","timestamp":1700000000000,"sender":"me"}]`, string(raw))
}

func TestContactsListsPersistedSlots(t *testing.T) {
	backend := kv.NewMemory()
	s := New(backend, "", nil)
	s.Save("bob", nil)
	s.Save("alice", sampleMessages())
	require.NoError(t, backend.Set("elsewhere/messages/zed", []byte("[]")))

	ids, err := s.Contacts()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)
}
