package services

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// fakeKV is an in-memory KeyValueStore shared by the service tests. Any
// operation can be forced to fail by setting its error field.
type fakeKV struct {
	mu sync.Mutex

	data    map[string]string
	ttls    map[string]time.Duration
	sets    map[string]map[string]bool
	lists   map[string][]string
	streams map[string][]map[string]interface{}

	expireCalls int

	getErr   error
	setErr   error
	incrErr  error
	lpushErr error
	xaddErr  error
	rpopErr  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		data:    map[string]string{},
		ttls:    map[string]time.Duration{},
		sets:    map[string]map[string]bool{},
		lists:   map[string][]string{},
		streams: map[string][]map[string]interface{}{},
	}
}

func fakeEncode(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		return string(data), err
	}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.data[key], nil
}

func (f *fakeKV) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := f.Get(ctx, key)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	_ = json.Unmarshal([]byte(raw), dest)
	return nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	encoded, err := fakeEncode(value)
	if err != nil {
		return err
	}
	f.data[key] = encoded
	f.ttls[key] = expiration
	return nil
}

func (f *fakeKV) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	encoded, err := fakeEncode(value)
	if err != nil {
		return false, err
	}
	f.data[key] = encoded
	f.ttls[key] = expiration
	return true, nil
}

func (f *fakeKV) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
		delete(f.ttls, key)
		delete(f.sets, key)
		delete(f.lists, key)
	}
	return nil
}

func (f *fakeKV) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireCalls++
	f.ttls[key] = expiration
	return nil
}

func (f *fakeKV) TTL(ctx context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.data[key]; !exists {
		return -2 * time.Second, nil
	}
	if ttl, ok := f.ttls[key]; ok && ttl > 0 {
		return ttl, nil
	}
	return -1 * time.Second, nil
}

func (f *fakeKV) Increment(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	current, _ := strconv.ParseInt(f.data[key], 10, 64)
	current++
	f.data[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (f *fakeKV) SAdd(ctx context.Context, key string, members ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.sets[key]
	if set == nil {
		set = map[string]bool{}
		f.sets[key] = set
	}
	for _, member := range members {
		encoded, err := fakeEncode(member)
		if err != nil {
			return err
		}
		set[encoded] = true
	}
	return nil
}

func (f *fakeKV) SMembers(ctx context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := make([]string, 0, len(f.sets[key]))
	for member := range f.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (f *fakeKV) SRem(ctx context.Context, key string, members ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, member := range members {
		encoded, err := fakeEncode(member)
		if err != nil {
			return err
		}
		delete(f.sets[key], encoded)
	}
	return nil
}

func (f *fakeKV) LPush(ctx context.Context, key string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lpushErr != nil {
		return f.lpushErr
	}
	for _, value := range values {
		encoded, err := fakeEncode(value)
		if err != nil {
			return err
		}
		f.lists[key] = append([]string{encoded}, f.lists[key]...)
	}
	return nil
}

func (f *fakeKV) RPop(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rpopErr != nil {
		return "", f.rpopErr
	}
	list := f.lists[key]
	if len(list) == 0 {
		return "", nil
	}
	last := list[len(list)-1]
	f.lists[key] = list[:len(list)-1]
	return last, nil
}

func (f *fakeKV) XAdd(ctx context.Context, stream string, maxLen int64, values map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.xaddErr != nil {
		return f.xaddErr
	}
	f.streams[stream] = append(f.streams[stream], values)
	if maxLen > 0 && int64(len(f.streams[stream])) > maxLen {
		f.streams[stream] = f.streams[stream][int64(len(f.streams[stream]))-maxLen:]
	}
	return nil
}

var _ KeyValueStore = (*fakeKV)(nil)
