package metrics

import (
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

type PoolStatser interface {
	PoolStats() *redis.PoolStats
}

// RedisPoolCollector exports the connection pool stats of a redis client.
type RedisPoolCollector struct {
	pool PoolStatser

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	timeouts   *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
	staleConns *prometheus.Desc
}

var _ prometheus.Collector = (*RedisPoolCollector)(nil)

func NewRedisPoolCollector(namespace string, pool PoolStatser) *RedisPoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "redis_pool", name), help, nil, nil)
	}
	return &RedisPoolCollector{
		pool:       pool,
		hits:       desc("hits_total", "Free connection found in the pool."),
		misses:     desc("misses_total", "Free connection not found in the pool."),
		timeouts:   desc("timeouts_total", "Waits for a connection that timed out."),
		totalConns: desc("total_conns", "Connections in the pool."),
		idleConns:  desc("idle_conns", "Idle connections in the pool."),
		staleConns: desc("stale_conns_total", "Stale connections removed from the pool."),
	}
}

func (c *RedisPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.timeouts
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.staleConns
}

func (c *RedisPoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.PoolStats()
	if stats == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(stats.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stats.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.staleConns, prometheus.CounterValue, float64(stats.StaleConns))
}
