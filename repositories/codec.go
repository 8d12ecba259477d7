package repositories

import (
	"fmt"
	"room-engine/errors"
	"slices"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// record is the decoded form of a stored value. Values are encoded as a
// protobuf Struct, so numbers come back as float64 and times as RFC3339 strings.
type record map[string]any

func encode(fields record) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}
	return proto.Marshal(s)
}

func decode(data []byte) (record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return s.AsMap(), nil
}

func (r record) str(key string) string {
	v, _ := r[key].(string)
	return v
}

func (r record) int(key string) int64 {
	v, _ := r[key].(float64)
	return int64(v)
}

func (r record) float(key string) float64 {
	v, _ := r[key].(float64)
	return v
}

func (r record) bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}

func (r record) time(key string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.str(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r record) timePtr(key string) *time.Time {
	if r.str(key) == "" {
		return nil
	}
	t := r.time(key)
	return &t
}

func (r record) list(key string) []record {
	raw, _ := r[key].([]any)
	out := make([]record, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func (r record) strings(key string) []string {
	raw, _ := r[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r record) sub(key string) record {
	m, _ := r[key].(map[string]any)
	return m
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func anyStrings(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// refusals are returned as is; anything else coming out of badger is a storage failure.
var refusals = []error{
	errors.ErrRoomNotFound,
	errors.ErrFormNotFound,
	errors.ErrNotEntrant,
	errors.ErrNicknameTaken,
	errors.ErrRoomFull,
	errors.ErrRoomClosed,
	errors.ErrContestNotFound,
	errors.ErrStageNotFound,
	errors.ErrSubmissionNotFound,
	errors.ErrNotParticipant,
	errors.ErrDuplicateVote,
}

func persistenceErr(err error) error {
	if err == nil || slices.Contains(refusals, err) {
		return err
	}
	return fmt.Errorf("%w: %w", errors.ErrPersistenceUnavailable, err)
}
