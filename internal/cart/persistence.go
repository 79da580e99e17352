package cart

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
)

// snapshotVersion gates the on-disk schema. A snapshot carrying a different
// version is discarded rather than half-decoded.
const snapshotVersion = 1

type snapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// FileStore mirrors cart state into a single JSON file, one file per browsing
// profile. Writes are last-write-wins; there is no merging with a previously
// stored snapshot.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the last snapshot once. A missing file, unreadable content or a
// version mismatch all fail open: the problem is logged, a corrupt file is
// removed, and the caller gets an empty cart.
func (f *FileStore) Load() []LineItem {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		log.Println("[CART] [ERROR] snapshot read failed:", err)
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Println("[CART] [ERROR] snapshot decode failed, discarding:", err)
		f.discard()
		return nil
	}
	if snap.Version != snapshotVersion {
		log.Printf("[CART] [ERROR] snapshot version %d not supported, discarding", snap.Version)
		f.discard()
		return nil
	}

	return snap.Items
}

// Save overwrites the snapshot with the full item collection. Failures are
// logged and swallowed; persistence never interrupts the mutation that
// triggered it.
func (f *FileStore) Save(items []LineItem) {
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Items: items})
	if err != nil {
		log.Println("[CART] [ERROR] snapshot encode failed:", err)
		return
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Println("[CART] [ERROR] snapshot dir create failed:", err)
			return
		}
	}

	// Write then rename so a crash mid-write cannot leave a torn snapshot.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Println("[CART] [ERROR] snapshot write failed:", err)
		return
	}
	if err := os.Rename(tmp, f.path); err != nil {
		log.Println("[CART] [ERROR] snapshot rename failed:", err)
	}
}

func (f *FileStore) discard() {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("[CART] [ERROR] snapshot discard failed:", err)
	}
}

// Mirror loads the persisted snapshot into the store as its initial state,
// then subscribes the file store so every later change is written through.
// The load happens before the subscription, so restoring does not trigger a
// redundant save and other observers attached afterwards see the restored
// cart. Returns the unsubscribe handle.
func Mirror(store *Store, files *FileStore) (unsubscribe func()) {
	if items := files.Load(); len(items) > 0 {
		store.Replace(items)
		log.Printf("[CART] [INFO] restored %d line item(s) from snapshot", len(items))
	}
	return store.Subscribe(files.Save)
}
