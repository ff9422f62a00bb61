package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"laneswitch/core"
	"laneswitch/host/config"
)

func sampleStatus() core.Status {
	s := core.Status{
		UptimeMs:  1500,
		Active:    core.Lane1,
		NeedFeed:  true,
		Indicator: core.IndicatorFeeding,
	}
	s.Lanes[0] = core.LaneStatus{In: true, Out: true, Mode: core.ModeFeed, Rate: 2200, Steps: 300}
	s.Lanes[1] = core.LaneStatus{In: true, Out: true}
	return s
}

func TestStoreSnapshot(t *testing.T) {
	store := NewStore()
	_, ok := store.Latest()
	require.False(t, ok)
	require.Nil(t, store.Snapshot().Status)

	store.RecordError(core.ErrChecksum)
	store.Update(sampleStatus())

	snap := store.Snapshot()
	require.NotNil(t, snap.Status)
	require.Equal(t, core.Lane1, snap.Status.Active)
	require.Equal(t, uint64(1), snap.Lines)
	require.Equal(t, uint64(1), snap.Errors)
	require.Equal(t, core.ErrChecksum.Error(), snap.LastError)

	select {
	case <-store.Changed():
	default:
		t.Fatal("update did not signal")
	}
}

func TestStoreChangedCollapses(t *testing.T) {
	store := NewStore()
	store.Update(sampleStatus())
	store.Update(sampleStatus())

	<-store.Changed()
	select {
	case <-store.Changed():
		t.Fatal("expected a single pending signal")
	default:
	}
}

func TestRead(t *testing.T) {
	good := sampleStatus()
	corrupt := []byte(good.Line())
	corrupt[3] ^= 1

	input := strings.Join([]string{
		"# boot lane=1",
		good.Line(),
		"",
		string(corrupt),
		"garbage",
	}, "\r\n")
	second := good
	second.Active = core.Lane2
	input += "\n" + second.Line()

	store := NewStore()
	require.NoError(t, Read(context.Background(), strings.NewReader(input), store))

	snap := store.Snapshot()
	require.Equal(t, uint64(2), snap.Lines)
	require.Equal(t, uint64(2), snap.Errors)
	require.Equal(t, core.Lane2, snap.Status.Active)
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Read(ctx, strings.NewReader("x\n"), NewStore()), context.Canceled)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestReadError(t *testing.T) {
	err := Read(context.Background(), failingReader{}, NewStore())
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestFollowRetriesOnEOF(t *testing.T) {
	pr, pw := io.Pipe()
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Follow(ctx, pr, store, time.Millisecond) }()

	s := sampleStatus()
	_, err := pw.Write([]byte(s.Line() + "\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := store.Latest()
		return ok
	}, time.Second, time.Millisecond)

	cancel()
	pw.Close()
	require.ErrorIs(t, <-done, context.Canceled)
}

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.timeout {
		close(ch)
	}
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu    sync.Mutex
	msgs  []published
	token fakeToken
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic, qos, retained, payload.([]byte)})
	return &c.token
}

func (c *fakeClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func testMQTT() config.MQTTConfig {
	return config.MQTTConfig{
		Topic:    "laneswitch/status",
		QoS:      1,
		Retained: true,
		Interval: 5 * time.Second,
		Timeout:  time.Second,
	}
}

func TestPublisherOnChangeAndInterval(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, testMQTT())
	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	s := sampleStatus()
	sent, err := p.Publish(&s)
	require.NoError(t, err)
	require.True(t, sent)

	// Counters alone do not trigger
	s.UptimeMs += 500
	s.Lanes[0].Steps += 1100
	sent, err = p.Publish(&s)
	require.NoError(t, err)
	require.False(t, sent)

	s.Armed = true
	sent, _ = p.Publish(&s)
	require.True(t, sent)

	s.Lanes[1].Mode = core.ModeAutoload
	require.True(t, p.Due(&s))
	sent, _ = p.Publish(&s)
	require.True(t, sent)

	now = now.Add(4 * time.Second)
	require.False(t, p.Due(&s))
	now = now.Add(time.Second)
	require.True(t, p.Due(&s))

	require.Len(t, client.msgs, 3)
	msg := client.msgs[0]
	require.Equal(t, "laneswitch/status", msg.topic)
	require.Equal(t, byte(1), msg.qos)
	require.True(t, msg.retained)

	var got core.Status
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	require.Equal(t, core.IndicatorFeeding, got.Indicator)
	require.Equal(t, core.ModeFeed, got.Lanes[0].Mode)
}

func TestPublisherErrors(t *testing.T) {
	client := &fakeClient{token: fakeToken{timeout: true}}
	p := NewPublisher(client, testMQTT())
	s := sampleStatus()

	_, err := p.Publish(&s)
	require.ErrorIs(t, err, errPublishTimeout)
	require.True(t, p.Due(&s))

	boom := errors.New("not connected")
	client.token = fakeToken{err: boom}
	_, err = p.Publish(&s)
	require.ErrorIs(t, err, boom)
	require.True(t, p.Due(&s))
}

func TestPublisherRun(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, testMQTT())
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, store) }()

	store.Update(sampleStatus())
	require.Eventually(t, func() bool { return client.count() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, 1, client.count())
}

func TestServer(t *testing.T) {
	store := NewStore()
	app := NewServer(store)

	get := func(path string) (int, map[string]any) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body
	}

	code, body := get("/status")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "no status received", body["error"])

	code, body = get("/health")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "waiting", body["status"])

	store.Update(sampleStatus())

	code, body = get("/status")
	require.Equal(t, http.StatusOK, code)
	status := body["status"].(map[string]any)
	require.Equal(t, "feeding", status["state"])
	require.EqualValues(t, 1, status["active"])

	code, body = get("/health")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])

	store.now = func() time.Time { return time.Now().Add(time.Minute) }
	code, body = get("/health")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "stale", body["status"])

	code, body = get("/version")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, appName, body["name"])
}
