package workflows

import (
	"context"

	"github.com/PolarWolf314/keymaker/internal/keyring"
)

// RepositoryInfo describes one stored keyring from the session identity's
// point of view.
type RepositoryInfo struct {
	ID string

	// Name is the decrypted display name, empty without access.
	Name string

	// Access reports whether the keyring has been shared with this identity.
	Access bool

	Entries    int
	Recipients int
}

// Repositories lists every stored keyring. Names are only decrypted for
// keyrings shared with the session identity. The open keyring, if any, is
// left open.
func (s *Session) Repositories(ctx context.Context) ([]RepositoryInfo, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]RepositoryInfo, 0, len(ids))
	for _, id := range ids {
		ring, err := s.store.Retrieve(ctx, id)
		if err != nil {
			s.log.Warnf("Skipping keyring %s: %v", id, err)
			continue
		}

		info := RepositoryInfo{
			ID:         id,
			Access:     ring.HasAccess(s.Fingerprint()),
			Entries:    ring.EntryCount(),
			Recipients: len(ring.AccessKeys()),
		}
		if info.Access {
			info.Name = s.readName(ring)
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func (s *Session) readName(ring *keyring.KeyringNode) string {
	enc, err := OpenKeyring(ring, s.identity)
	if err != nil {
		s.log.Warnf("Cannot open keyring %s: %v", ring.ID(), err)
		return ""
	}
	defer enc.Destroy()

	name, err := repositoryName(ring, enc)
	if err != nil {
		s.log.Warnf("Cannot read name of keyring %s: %v", ring.ID(), err)
		return ""
	}
	return name
}
