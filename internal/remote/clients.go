package remote

import (
	"go.uber.org/zap"

	"memorybox-backend/internal/localstore"
)

// Clients bundles the per-entity remote clients behind one constructor so
// the container wires a single dependency.
//
// Every client applies the same routing rule: operations keyed by an
// ephemeral scope id (see domain.IsDurable) never touch the network and
// are served from the local cache instead. Durable ids go to the remote
// tables and return remote truth; mirroring results back into the cache
// is the reconciler's job, not the clients'.
type Clients struct {
	Profiles        *ProfileClient
	Families        *FamilyClient
	Trees           *TreeClient
	Memories        *MemoryClient
	Journals        *JournalClient
	Journeys        *JourneyClient
	Capsules        *CapsuleClient
	BookPreferences *BookPreferenceClient
}

// NewClients builds the full client set over one transport.
func NewClients(transport Transport, local *localstore.Store, logger *zap.Logger) *Clients {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clients{
		Profiles:        NewProfileClient(transport, local, logger),
		Families:        NewFamilyClient(transport, local, logger),
		Trees:           NewTreeClient(transport, local, logger),
		Memories:        NewMemoryClient(transport, local, logger),
		Journals:        NewJournalClient(transport, local, logger),
		Journeys:        NewJourneyClient(transport, local, logger),
		Capsules:        NewCapsuleClient(transport, local, logger),
		BookPreferences: NewBookPreferenceClient(transport, local, logger),
	}
}
