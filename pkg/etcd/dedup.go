package etcd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	keyPrefix   = "/echobot/events/"
	dialTimeout = 5 * time.Second
	timeout     = 3 * time.Second
)

// Deduper remembers event IDs in etcd for a limited time,
// so that event redeliveries are handled only once, even
// across multiple server replicas and restarts.
type Deduper struct {
	kv    clientv3.KV
	lease clientv3.Lease
	ttl   int64 // Seconds.

	closer func() error
}

// NewDeduper connects to the etcd servers specified in the CLI flags.
// It returns nil if no etcd endpoint URLs are configured.
func NewDeduper(cmd *cli.Command) (*Deduper, error) {
	eps := cmd.StringSlice("etcd-endpoint-urls")
	if len(eps) == 0 {
		return nil, nil
	}

	c, err := clientv3.New(clientv3.Config{
		Endpoints:   eps,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize etcd client: %w", err)
	}

	d := newDeduper(c.KV, c.Lease, cmd.Duration("etcd-dedup-ttl"))
	d.closer = c.Close
	return d, nil
}

func newDeduper(kv clientv3.KV, l clientv3.Lease, ttl time.Duration) *Deduper {
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = int64(DefaultDedupTTL / time.Second)
	}
	return &Deduper{kv: kv, lease: l, ttl: secs}
}

// Claim atomically creates a key for the given event ID, unless it
// already exists. It reports whether this call created the key.
func (d *Deduper) Claim(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lease, err := d.lease.Grant(ctx, d.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to grant etcd lease: %w", err)
	}

	key := keyPrefix + id
	resp, err := d.kv.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, time.Now().UTC().Format(time.RFC3339), clientv3.WithLease(lease.ID))).
		Commit()
	if err != nil {
		return false, fmt.Errorf("failed to claim etcd key: %w", err)
	}

	if !resp.Succeeded {
		// Not critical: the lease would expire anyway.
		_, _ = d.lease.Revoke(ctx, lease.ID)
	}

	return resp.Succeeded, nil
}

func (d *Deduper) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}
