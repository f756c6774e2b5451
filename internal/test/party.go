package test

import (
	"github.com/quorumkey/quorumkey/pkg/party"
)

// PartyIDs returns a sorted slice of n party IDs, numbered from 1.
func PartyIDs(n int) party.IDSlice {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(i + 1)
	}
	return party.NewIDSlice(ids)
}
