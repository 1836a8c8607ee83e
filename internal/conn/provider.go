package conn

import (
	"context"
	"crypto/tls"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slices"
)

// disconnectTimeout bounds the driver teardown when an idle client expires.
const disconnectTimeout = 5 * time.Second

// Options carries the per-acquisition connection settings. The zero value
// is a plain unauthenticated cluster connection.
type Options struct {
	Credential *options.Credential // Optional auth credential
	TLS        *tls.Config         // Optional TLS settings
	Direct     bool                // Connect to the given host only, no discovery
	AppName    string              // Reported to the server for diagnostics
}

// Handle identifies one acquisition so it can be released exactly once.
// The zero Handle is inert: releasing it does nothing.
type Handle struct {
	key string
}

// Provider hands out pooled mongo clients keyed by the host set they were
// built for. Acquisitions are refcounted; a released client lingers for an
// idle-timeout hint before it is torn down, so back-to-back planning calls
// reuse the same connection.
//
// Thread-safe: all methods may be called concurrently.
type Provider struct {
	pool map[string]*pooled // Pool entries by host-set key
	dial dialFunc           // Seam for tests; defaults to mongo.Connect
	log  zerolog.Logger
	mu   sync.Mutex // Protects pool and entry refcounts
}

type dialFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

type pooled struct {
	client *mongo.Client
	refs   int
	idle   *time.Timer // Pending teardown, nil while referenced
}

// NewProvider creates an empty provider.
func NewProvider(log zerolog.Logger) *Provider {
	return &Provider{
		pool: make(map[string]*pooled),
		dial: func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
			return mongo.Connect(ctx, opts)
		},
		log: log,
	}
}

// Acquire returns a client for the given host set, dialing one if the pool
// has no live entry. Callers must pair every Acquire with one Release.
func (p *Provider) Acquire(ctx context.Context, hosts []string, o Options) (Handle, *mongo.Client, error) {
	key := poolKey(hosts, o.Direct)

	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.pool[key]; ok {
		e.refs++
		if e.idle != nil {
			e.idle.Stop()
			e.idle = nil
		}
		return Handle{key: key}, e.client, nil
	}

	opts := options.Client().SetHosts(hosts).SetDirect(o.Direct)
	if o.Credential != nil {
		opts.SetAuth(*o.Credential)
	}
	if o.TLS != nil {
		opts.SetTLSConfig(o.TLS)
	}
	if o.AppName != "" {
		opts.SetAppName(o.AppName)
	}

	client, err := p.dial(ctx, opts)
	if err != nil {
		return Handle{}, nil, errors.Wrapf(err, "connecting to %s", strings.Join(hosts, ","))
	}

	p.log.Debug().Strs("hosts", hosts).Bool("direct", o.Direct).Msg("Dialed new client.")
	p.pool[key] = &pooled{client: client, refs: 1}
	return Handle{key: key}, client, nil
}

// AcquireHost returns a client pinned to a single host, bypassing topology
// discovery. Used to reach one shard member directly.
func (p *Provider) AcquireHost(ctx context.Context, host string, o Options) (Handle, *mongo.Client, error) {
	o.Direct = true
	return p.Acquire(ctx, []string{host}, o)
}

// Release gives back one acquisition. When the last reference goes away the
// client stays pooled for the idle hint and is then disconnected; a zero or
// negative hint tears it down immediately.
func (p *Provider) Release(h Handle, idle time.Duration) {
	if h.key == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.pool[h.key]
	if !ok || e.refs == 0 {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}

	if idle <= 0 {
		delete(p.pool, h.key)
		p.disconnect(e.client)
		return
	}

	key := h.key
	e.idle = time.AfterFunc(idle, func() {
		p.expire(key)
	})
}

// expire tears down an entry whose idle timer fired, unless it was
// re-acquired in the meantime.
func (p *Provider) expire(key string) {
	p.mu.Lock()
	e, ok := p.pool[key]
	if !ok || e.refs > 0 {
		p.mu.Unlock()
		return
	}
	delete(p.pool, key)
	p.mu.Unlock()

	p.log.Debug().Str("pool", key).Msg("Idle client expired.")
	p.disconnect(e.client)
}

// Close tears down every pooled client regardless of refcounts. Intended
// for process shutdown.
func (p *Provider) Close() {
	p.mu.Lock()
	entries := make([]*pooled, 0, len(p.pool))
	for key, e := range p.pool {
		if e.idle != nil {
			e.idle.Stop()
		}
		entries = append(entries, e)
		delete(p.pool, key)
	}
	p.mu.Unlock()

	for _, e := range entries {
		p.disconnect(e.client)
	}
}

func (p *Provider) disconnect(client *mongo.Client) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		p.log.Warn().Err(err).Msg("Client disconnect failed.")
	}
}

// poolKey normalizes a host set so acquisition order does not fragment the
// pool. Direct connections never share an entry with discovered ones.
func poolKey(hosts []string, direct bool) string {
	sorted := slices.Clone(hosts)
	slices.Sort(sorted)
	key := strings.Join(sorted, ",")
	if direct {
		key += "/direct"
	}
	return key
}
