package remote

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// TreeClient syncs the family_trees table, where each family's tree
// travels as a single jsonb document.
type TreeClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewTreeClient(transport Transport, local *localstore.Store, logger *zap.Logger) *TreeClient {
	return &TreeClient{transport: transport, local: local, logger: logger}
}

// Fetch returns the stored tree for the family, or nil when the family
// has no tree row yet. The two cases matter to callers: nil means the
// remote definitively has nothing, an error means we could not find out.
func (c *TreeClient) Fetch(ctx context.Context, familyID string) (*domain.FamilyTree, error) {
	if !domain.IsDurable(familyID) {
		var cached domain.FamilyTree
		if c.local.Read(localstore.TreeKey(familyID), &cached) {
			cached.Normalize()
			return &cached, nil
		}
		return nil, nil
	}
	var rows []treeRow
	if err := c.transport.SelectEq(ctx, TableFamilyTrees, map[string]string{"family_id": familyID}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	tree := treeFromRow(rows[0], c.logger)
	return &tree, nil
}

// Upsert replaces the family's tree document. Ephemeral family ids stay
// purely local.
func (c *TreeClient) Upsert(ctx context.Context, tree *domain.FamilyTree) error {
	tree.Normalize()
	if err := tree.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(tree.FamilyID) {
		if !c.local.Write(localstore.TreeKey(tree.FamilyID), tree) {
			return appErrors.NewInternal("caching ephemeral tree failed", nil)
		}
		return nil
	}
	row := treeToRow(*tree, formatWireTime(time.Now()))
	return c.transport.Upsert(ctx, TableFamilyTrees, "family_id", row)
}
