// Package redis records telemetry in Redis: every record is published on a
// channel and the latest records of each node are kept in a list.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/motor"
)

// Defaults of a Recorder.
const (
	DefaultChannel    = "esc:telemetry"
	DefaultHistoryLen = 1000
)

// ErrHistoryLen reports a Recorder without a positive HistoryLen.
var ErrHistoryLen = errors.New("history length must be positive")

// Record is a telemetry record with the time it was received.
type Record struct {
	motor.Telemetry
	Time time.Time `json:"time"`
}

type recordJSON struct {
	motor.TelemetryJSON
	Time time.Time `json:"time"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{TelemetryJSON: r.Telemetry.JSON(), Time: r.Time})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var j recordJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	r.Telemetry, r.Time = j.TelemetryJSON.Telemetry(), j.Time
	return nil
}

// HistoryKey is the list holding the history of node, newest first.
func HistoryKey(node can.NodeID) string {
	return fmt.Sprintf("esc:node:%d:telemetry", node)
}

// Recorder writes telemetry to Redis.
type Recorder struct {
	Client     redis.UniversalClient
	Channel    string
	HistoryLen int64
}

// NewRecorder connects to Redis and checks the connection.
func NewRecorder(ctx context.Context, opts *redis.Options) (*Recorder, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	glog.Infof("redis connected: %s", opts.Addr)
	return &Recorder{
		Client:     client,
		Channel:    DefaultChannel,
		HistoryLen: DefaultHistoryLen,
	}, nil
}

// Record publishes rec and appends it to the node history.
func (r *Recorder) Record(ctx context.Context, rec Record) error {
	if r.HistoryLen <= 0 {
		return ErrHistoryLen
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := HistoryKey(rec.Node)
	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, r.Channel, data)
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, r.HistoryLen-1)
		return nil
	})
	return err
}

// HandleTelemetry implements control.TelemetrySink.
func (r *Recorder) HandleTelemetry(ctx context.Context, t motor.Telemetry) {
	if err := r.Record(ctx, Record{Telemetry: t, Time: time.Now()}); err != nil {
		glog.Warningf("record telemetry of node %d: %v", t.Node, err)
	}
}

// History gets up to n latest records of node, newest first.
func (r *Recorder) History(ctx context.Context, node can.NodeID, n int64) ([]Record, error) {
	items, err := r.Client.LRange(ctx, HistoryKey(node), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("history of node %d: %w", node, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close implements io.Closer.
func (r *Recorder) Close() error {
	return r.Client.Close()
}
