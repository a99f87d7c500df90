package translation

import "sync"

// Cache is a per-run translation memo keyed by language pair and source
// text. Duplicate in-flight requests for the same text are not de-duplicated;
// the last reply wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func (c *Cache) Get(sourceLang, targetLang, text string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	translated, ok := c.entries[cacheKey(sourceLang, targetLang, text)]
	return translated, ok
}

func (c *Cache) Put(sourceLang, targetLang, text, translated string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(sourceLang, targetLang, text)] = translated
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(sourceLang, targetLang, text string) string {
	return sourceLang + "\x00" + targetLang + "\x00" + text
}
