package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const installIDFile = "install_id"

// LoadOrCreateInstallID returns the install id stored in dir, generating and
// persisting a new random one on first use.
func LoadOrCreateInstallID(dir string) (uuid.UUID, error) {
	path := filepath.Join(dir, installIDFile)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id, perr := uuid.Parse(strings.TrimSpace(string(data)))
		if perr == nil {
			return id, nil
		}
		// Unreadable id: replace it; the old callback URL is unusable anyway.
	case !errors.Is(err, fs.ErrNotExist):
		return uuid.Nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	id := uuid.New()
	if err := writeFileAtomic(dir, path, []byte(id.String()+"\n")); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}
