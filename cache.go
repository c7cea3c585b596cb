package halo

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
)

// cacheVersion is mixed into every cache key. Bump it when the
// simulation changes in a way that invalidates old results.
const cacheVersion = 1

type CacheKey struct {
	dir, key string
}

// MakeCacheKey returns a key for a cache in directory dir derived from
// the gob encoding of args.
func MakeCacheKey(dir string, args ...any) *CacheKey {
	h := sha256.New()

	enc := gob.NewEncoder(h)
	for _, arg := range append([]any{cacheVersion}, args...) {
		if err := enc.Encode(arg); err != nil {
			panic("error encoding cache key: " + err.Error())
		}
	}

	return &CacheKey{dir, hex.EncodeToString(h.Sum(nil))}
}

func (ck *CacheKey) path() string {
	return filepath.Join(ck.dir, ck.key)
}

func (ck *CacheKey) Load(out any) bool {
	f, err := os.Open(ck.path())
	if err != nil {
		return false
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	if dec.Decode(out) != nil {
		return false
	}
	return true
}

func (ck *CacheKey) Save(val any) {
	if err := os.MkdirAll(ck.dir, 0777); err != nil {
		log.Printf("error creating %s: %s", ck.dir, err)
		return
	}
	f, err := os.Create(ck.path())
	if err != nil {
		log.Printf("error saving to cache: %s", err)
		return
	}
	defer f.Close()
	enc := gob.NewEncoder(f)
	if err := enc.Encode(val); err != nil {
		panic("error encoding cache value: " + err.Error())
	}
}

// RunCached is like Run, but reuses the result of an earlier run with
// the same configuration saved in directory dir.
func RunCached(cfg Config, dir string) *Result {
	// Workers doesn't affect the result.
	keyCfg := cfg
	keyCfg.Workers = 0
	ck := MakeCacheKey(dir, keyCfg)
	var res Result
	if ck.Load(&res) {
		res.Config = cfg
		return &res
	}
	r := Run(cfg)
	ck.Save(r)
	return r
}
