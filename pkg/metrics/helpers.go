package metrics

// RecordCacheHit отмечает попадание в кеш по префиксу ключа
func RecordCacheHit(keyPrefix string) {
	RedisCacheHits.WithLabelValues(keyPrefix).Inc()
}

// RecordCacheMiss отмечает промах кеша по префиксу ключа
func RecordCacheMiss(keyPrefix string) {
	RedisCacheMisses.WithLabelValues(keyPrefix).Inc()
}
