package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultFlushInterval is how long metrics may sit in the packet buffer.
	DefaultFlushInterval = time.Second
	// DefaultMaxPacketSize keeps a batch inside one Ethernet frame.
	DefaultMaxPacketSize = 1432
)

// Sink describes the minimal interface required to emit StatsD-style metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes how to connect to a StatsD-compatible sink.
type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	GlobalTags map[string]string
	// FlushInterval bounds how long a line waits for its packet. Zero uses
	// DefaultFlushInterval; a negative value sends every line on its own.
	FlushInterval time.Duration
	MaxPacketSize int
	Logger        *slog.Logger
}

// Client batches metric lines into UDP packets in the DogStatsD format.
// Gate decisions are emitted once per request, so lines are joined with "\n"
// until the packet is full or the flush interval passes.
// It is safe for concurrent use; a nil *Client discards everything.
type Client struct {
	prefix    string
	globalTag string
	maxPacket int
	immediate bool
	logger    *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	packet []byte

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

var _ Sink = (*Client)(nil)

// NewClient dials the configured endpoint unless disabled. A disabled client
// is returned as a usable no-op.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxPacket := cfg.MaxPacketSize
	if maxPacket <= 0 {
		maxPacket = DefaultMaxPacketSize
	}
	interval := cfg.FlushInterval
	if interval == 0 {
		interval = DefaultFlushInterval
	}

	c := &Client{
		prefix:    sanitizePrefix(cfg.Prefix),
		globalTag: renderTags(cleanTags(cfg.GlobalTags)),
		maxPacket: maxPacket,
		immediate: interval < 0,
		logger:    logger,
	}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}
	c.conn = conn
	c.packet = make([]byte, 0, maxPacket)

	if !c.immediate {
		c.stop = make(chan struct{})
		c.done = make(chan struct{})
		go c.flushLoop(interval)
	}
	return c, nil
}

// Enabled reports whether the client actively emits metrics.
func (c *Client) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Count adds value to a counter, e.g. gate.decision tagged with its kind.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.add(name, strconv.FormatInt(value, 10), "c", tags)
}

// Gauge records a point-in-time value such as gate.queue.depth.
func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.add(name, formatFloat(value), "g", tags)
}

// Timing records a duration in milliseconds, e.g. a store refresh.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	c.add(name, formatFloat(float64(value)/float64(time.Millisecond)), "ms", tags)
}

// Flush sends whatever is buffered.
func (c *Client) Flush() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
}

// Close stops the flush loop, sends the remaining lines and releases the
// connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.stop != nil {
		c.stopOnce.Do(func() {
			close(c.stop)
			<-c.done
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.flushLocked()
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) flushLoop(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}

func (c *Client) add(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	line := c.format(name, value, kind, tags)
	if line == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if len(c.packet) > 0 && len(c.packet)+1+len(line) > c.maxPacket {
		c.flushLocked()
	}
	if len(c.packet) > 0 {
		c.packet = append(c.packet, '\n')
	}
	c.packet = append(c.packet, line...)
	if c.immediate || len(c.packet) >= c.maxPacket {
		c.flushLocked()
	}
}

func (c *Client) flushLocked() {
	if c.conn == nil || len(c.packet) == 0 {
		return
	}
	if _, err := c.conn.Write(c.packet); err != nil {
		c.logger.Debug("statsd write failed", "error", err, "bytes", len(c.packet))
	}
	c.packet = c.packet[:0]
}

// format renders "<prefix>.<name>:<value>|<kind>|#<tags>". Per-call tags
// override global ones with the same key.
func (c *Client) format(name, value, kind string, tags map[string]string) string {
	metric := normalizeMetricName(name)
	if metric == "" {
		return ""
	}
	if c.prefix != "" {
		metric = c.prefix + "." + metric
	}

	var b strings.Builder
	b.WriteString(metric)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)

	local := cleanTags(tags)
	switch {
	case len(local) == 0 && c.globalTag != "":
		b.WriteString("|#")
		b.WriteString(c.globalTag)
	case len(local) > 0:
		b.WriteString("|#")
		b.WriteString(c.mergedTags(local))
	}
	return b.String()
}

func (c *Client) mergedTags(local map[string]string) string {
	if c.globalTag == "" {
		return renderTags(local)
	}
	merged := make(map[string]string, len(local)+4)
	for pair := range strings.SplitSeq(c.globalTag, ",") {
		k, v, _ := strings.Cut(pair, ":")
		merged[k] = v
	}
	maps.Copy(merged, local)
	return renderTags(merged)
}

// renderTags joins tags as sorted "k:v" pairs.
func renderTags(tags map[string]string) string {
	keys := slices.Sorted(maps.Keys(tags))
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+":"+tags[k])
	}
	return strings.Join(pairs, ",")
}

// Tag keys lose every separator of the line format; values may keep ':'.
var (
	tagKeyReplacer   = strings.NewReplacer("|", "_", ",", "_", "#", "_", "\n", "_", ":", "_")
	tagValueReplacer = strings.NewReplacer("|", "_", ",", "_", "\n", "_")
)

// cleanTags trims keys and values, drops empty keys and replaces characters
// that would break the line format.
func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		key := tagKeyReplacer.Replace(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		out[key] = tagValueReplacer.Replace(strings.TrimSpace(v))
	}
	return out
}

func sanitizePrefix(prefix string) string {
	return strings.Trim(normalizeMetricName(prefix), ".")
}

// normalizeMetricName keeps letters, digits, '_', '-' and single dots;
// anything else becomes '_'.
func normalizeMetricName(name string) string {
	var b strings.Builder
	lastDot := true
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '.':
			if lastDot {
				continue
			}
			lastDot = true
			b.WriteRune(r)
			continue
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		lastDot = false
	}
	return strings.TrimSuffix(b.String(), ".")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
