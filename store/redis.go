package store

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"github.com/meenmo/curvelib/errors"
)

const defaultKeyPrefix = "curvelib:snapshot:"

// RedisStore persists snapshots in Redis as zstd-compressed JSON.
type RedisStore struct {
	client    *redis.Client
	opts      *Options
	keyPrefix string
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithOptions overrides the store options.
func WithOptions(opts *Options) RedisOption {
	return func(rs *RedisStore) {
		rs.opts = opts
	}
}

// WithKeyPrefix overrides the key prefix snapshots are stored under.
func WithKeyPrefix(prefix string) RedisOption {
	return func(rs *RedisStore) {
		rs.keyPrefix = prefix
	}
}

// NewRedisStore connects to Redis at addr, e.g. "tcp://localhost:6379" or
// "tcp://:password@host:6379/2" to select database 2.
func NewRedisStore(addr string, options ...RedisOption) (*RedisStore, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, errors.Store("invalid redis address "+addr, err)
	}
	var passwd string
	if u.User != nil {
		passwd, _ = u.User.Password()
	}
	db := 0
	if len(u.Path) > 1 {
		db, err = strconv.Atoi(u.Path[1:])
		if err != nil {
			return nil, errors.Store("invalid redis db in address "+addr, err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Network:  u.Scheme,
		Addr:     u.Host,
		Password: passwd,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Store("failed to connect to redis", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Store("failed to create zstd encoder", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Store("failed to create zstd decoder", err)
	}

	rs := &RedisStore{
		client:    client,
		opts:      DefaultOptions(),
		keyPrefix: defaultKeyPrefix,
		enc:       enc,
		dec:       dec,
	}
	for _, option := range options {
		option(rs)
	}
	return rs, nil
}

func encodeSnapshot(enc *zstd.Encoder, snap *Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Store("failed to marshal snapshot", err)
	}
	return enc.EncodeAll(data, nil), nil
}

func decodeSnapshot(dec *zstd.Decoder, payload []byte) (*Snapshot, error) {
	data, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, errors.Store("failed to decompress snapshot", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Store("failed to unmarshal snapshot", err)
	}
	return &snap, nil
}

func (rs *RedisStore) key(id string) string {
	return rs.keyPrefix + id
}

func (rs *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New(errors.TypeStore, "nil snapshot")
	}
	if snap.ID == "" {
		return errors.New(errors.TypeStore, "snapshot id must not be empty")
	}
	payload, err := encodeSnapshot(rs.enc, snap)
	if err != nil {
		return err
	}
	if err := rs.client.Set(ctx, rs.key(snap.ID), payload, rs.opts.DefaultTTL).Err(); err != nil {
		return errors.Store("failed to write snapshot "+snap.ID, err)
	}
	return nil
}

func (rs *RedisStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	payload, err := rs.client.Get(ctx, rs.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("snapshot", id)
		}
		return nil, errors.Store("failed to read snapshot "+id, err)
	}
	return decodeSnapshot(rs.dec, payload)
}

func (rs *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, rs.keyPrefix+"*").Result()
	if err != nil {
		return nil, errors.Store("failed to list snapshots", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, rs.keyPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}

func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := rs.client.Del(ctx, rs.key(id)).Result()
	if err != nil {
		return errors.Store("failed to delete snapshot "+id, err)
	}
	if n == 0 {
		return errors.NotFound("snapshot", id)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	if err := rs.enc.Close(); err != nil {
		return err
	}
	rs.dec.Close()
	return rs.client.Close()
}
