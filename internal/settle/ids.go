package settle

import "github.com/google/uuid"

// settlementNamespace is the fixed UUID namespace for settlement IDs.
// Changing it would orphan every persisted settled flag.
var settlementNamespace = uuid.MustParse("8f0b2a4e-5b1d-4c63-9a2f-3d7e11c0aa42")

// SettlementID derives the stable identifier for the ordered player pair
// within a group. The same (group, from, to) always yields the same ID, which
// is what lets the settled flag survive recomputation.
func SettlementID(groupID, fromPlayerID, toPlayerID string) string {
	name := groupID + "|" + fromPlayerID + "|" + toPlayerID
	return uuid.NewSHA1(settlementNamespace, []byte(name)).String()
}
