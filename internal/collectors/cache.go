package collectors

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CacheManager is a file-based JSON cache keyed by a hash of the
// request parameters. It keeps repeated runs during testing from
// hammering rate-limited sources.
type CacheManager struct {
	cacheDir string
	ttl      time.Duration
	enabled  bool
}

func NewCacheManager(cacheDir string, ttl time.Duration, enabled bool) *CacheManager {
	return &CacheManager{cacheDir: cacheDir, ttl: ttl, enabled: enabled}
}

func (cm *CacheManager) key(source, method string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s_%s_%x.json", source, method, hash)
}

// Get retrieves cached data if present and within TTL.
func (cm *CacheManager) Get(source, method string, params interface{}, result interface{}) bool {
	if !cm.enabled {
		return false
	}

	path := filepath.Join(cm.cacheDir, cm.key(source, method, params))
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > cm.ttl {
		os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set stores data in the cache.
func (cm *CacheManager) Set(source, method string, params interface{}, data interface{}) error {
	if !cm.enabled {
		return nil
	}

	if err := os.MkdirAll(cm.cacheDir, 0o755); err != nil {
		return err
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cm.cacheDir, cm.key(source, method, params)), jsonData, 0o644)
}
