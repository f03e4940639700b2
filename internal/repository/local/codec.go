package local

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/metrics"
)

// store is shared by the typed stores for decoding and self-healing.
type store struct {
	kv      KeyValue
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// load decodes the value under key. A missing key yields the zero value. A payload that
// cannot be parsed is logged, dropped, and also yields the zero value.
func load[T any](s *store, key string) (T, error) {
	var v T
	data, ok, err := s.kv.Get(key)
	if err != nil {
		return v, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("corrupted local payload, resetting to empty",
			zap.String("key", key),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		s.metrics.StoreSelfHeal(key)
		if derr := s.kv.Delete(key); derr != nil {
			s.logger.Error("failed to drop corrupted payload", zap.String("key", key), zap.Error(derr))
		}
		var zero T
		return zero, nil
	}
	return v, nil
}

func save(s *store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
