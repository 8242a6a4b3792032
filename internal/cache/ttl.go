package cache

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Clock 返回当前时间，测试时注入假时钟
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL 是按请求形态做 key 的读穿透缓存：容量由 LRU 限制，过期由注入的时钟判断。
// 只做基于时间的失效，调用方从不主动删除。nil *TTL 等价于不缓存。
type TTL[V any] struct {
	ttl   time.Duration
	now   Clock
	store *lru.Cache[string, entry[V]]
}

type options struct {
	now Clock
}

// Option 配置缓存
type Option func(*options)

// WithClock 注入时钟
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.now = c
		}
	}
}

// New 创建容量为 size、有效期为 ttl 的缓存
func New[V any](size int, ttl time.Duration, opts ...Option) (*TTL[V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache: size must be positive, got %d", size)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache: ttl must be positive, got %s", ttl)
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTL[V]{ttl: ttl, now: o.now, store: store}, nil
}

// Get 命中且未过期时返回值；过期条目在这里被清掉
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	e, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.store.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set 写入并从当前时刻开始计时
func (c *TTL[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.store.Add(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Len 当前条目数 (包含尚未被访问到的过期条目)
func (c *TTL[V]) Len() int {
	if c == nil {
		return 0
	}
	return c.store.Len()
}

// Purge 清空缓存
func (c *TTL[V]) Purge() {
	if c == nil {
		return
	}
	c.store.Purge()
}

// Key 用请求的各个组成部分拼出缓存 key
func Key(op string, parts ...any) string {
	var b strings.Builder
	b.WriteString(op)
	for _, p := range parts {
		b.WriteByte('|')
		fmt.Fprint(&b, p)
	}
	return b.String()
}
