package test

import (
	"io"

	"github.com/quorumkey/quorumkey/internal/types"
	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/math/sample"
	"github.com/quorumkey/quorumkey/pkg/paillier"
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/pool"
	"github.com/quorumkey/quorumkey/protocols/gg20/config"
)

// GenerateConfig creates a random valid key configuration for N parties
// with threshold T, bypassing the key generation protocol.
func GenerateConfig(group curve.Curve, N, T int, source io.Reader, pl *pool.Pool) (map[party.ID]*config.Config, party.IDSlice) {
	partyIDs := PartyIDs(N)
	configs := make(map[party.ID]*config.Config, N)
	public := make(map[party.ID]*config.Public, N)

	f := polynomial.NewPolynomial(group, T, sample.Scalar(source, group), source)

	rid, err := types.NewRID(source)
	if err != nil {
		panic(err)
	}
	chainKey, err := types.NewRID(source)
	if err != nil {
		panic(err)
	}

	for _, pid := range partyIDs {
		paillierSecret := paillier.NewSecretKey(pl)
		s, t, _ := sample.Pedersen(source, paillierSecret.Phi(), paillierSecret.N())

		secretShare := f.Evaluate(pid.Scalar(group))
		configs[pid] = &config.Config{
			Group:     group,
			ID:        pid,
			Threshold: T,
			ECDSA:     secretShare,
			P:         paillierSecret.P(),
			Q:         paillierSecret.Q(),
			RID:       rid.Copy(),
			ChainKey:  chainKey.Copy(),
			Public:    public,
		}
		public[pid] = &config.Public{
			ECDSA: secretShare.ActOnBase(),
			N:     paillierSecret.N(),
			S:     s,
			T:     t,
		}
	}
	return configs, partyIDs
}
