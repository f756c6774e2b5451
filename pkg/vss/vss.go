// Package vss implements Feldman verifiable secret sharing over an arbitrary
// curve group.
//
// A dealer splits a secret scalar into n shares such that any t+1 of them
// reconstruct the secret, and publishes an exponent polynomial which lets
// every receiver verify its share without learning the secret.
package vss

import (
	"errors"
	"fmt"
	"io"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
	"github.com/quorumkey/quorumkey/pkg/math/polynomial"
	"github.com/quorumkey/quorumkey/pkg/party"
)

// ErrInvalidShare is returned when a share does not match the dealer's
// public commitment polynomial.
var ErrInvalidShare = errors.New("vss: share is inconsistent with commitments")

// ErrInsufficientShares is returned when fewer than t+1 shares are provided
// for reconstruction.
var ErrInsufficientShares = errors.New("vss: not enough shares to reconstruct")

// Share is a party's evaluation of the dealer's secret polynomial.
type Share struct {
	// Index identifies the party holding the share.
	Index party.ID
	// Value is f(Index) where f is the dealer's secret polynomial.
	Value curve.Scalar
}

// Commitments is the dealer's exponent polynomial F = [f]⋅G, published
// alongside the shares.
type Commitments = polynomial.Exponent

// Split shares the secret among the given parties with threshold t.
//
// Any subset of t+1 parties can reconstruct the secret, and no subset of t
// parties learns anything about it. The returned commitments allow each
// receiver to verify its share.
func Split(group curve.Curve, secret curve.Scalar, threshold int, recipients []party.ID, rand io.Reader) (map[party.ID]*Share, *Commitments, error) {
	if threshold < 0 {
		return nil, nil, fmt.Errorf("vss: negative threshold %d", threshold)
	}
	if len(recipients) < threshold+1 {
		return nil, nil, fmt.Errorf("vss: need at least %d recipients for threshold %d, got %d",
			threshold+1, threshold, len(recipients))
	}
	ids := party.NewIDSlice(recipients)
	if !ids.Valid() {
		return nil, nil, errors.New("vss: recipient list contains duplicate or zero indices")
	}

	f := polynomial.NewPolynomial(group, threshold, secret, rand)
	commitments := polynomial.NewPolynomialExponent(f)

	shares := make(map[party.ID]*Share, len(ids))
	for _, id := range ids {
		shares[id] = &Share{
			Index: id,
			Value: f.Evaluate(id.Scalar(group)),
		}
	}
	return shares, commitments, nil
}

// Verify checks a share against the dealer's commitments.
//
// It returns ErrInvalidShare when [share.Value]⋅G ≠ F(share.Index).
func Verify(group curve.Curve, share *Share, commitments *Commitments) error {
	if share == nil || share.Value == nil {
		return errors.New("vss: nil share")
	}
	if share.Index == 0 {
		return errors.New("vss: share index must be non-zero")
	}
	expected := commitments.Evaluate(share.Index.Scalar(group))
	actual := share.Value.ActOnBase()
	if !actual.Equal(expected) {
		return ErrInvalidShare
	}
	return nil
}

// Reconstruct recovers the secret from at least threshold+1 shares by
// Lagrange interpolation at 0.
//
// The caller is responsible for having verified the shares; tampered shares
// yield a wrong secret, not an error.
func Reconstruct(group curve.Curve, threshold int, shares map[party.ID]*Share) (curve.Scalar, error) {
	if len(shares) < threshold+1 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientShares, len(shares), threshold+1)
	}

	ids := make([]party.ID, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	lagrange := polynomial.Lagrange(group, ids)

	secret := group.NewScalar()
	for id, share := range shares {
		secret.Add(lagrange[id].Mul(share.Value))
	}
	return secret, nil
}

// ReconstructPublic recovers the public point F(0) from threshold+1 share
// commitments [f(i)]⋅G, without access to any secret material.
func ReconstructPublic(group curve.Curve, threshold int, points map[party.ID]curve.Point) (curve.Point, error) {
	if len(points) < threshold+1 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientShares, len(points), threshold+1)
	}

	ids := make([]party.ID, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	lagrange := polynomial.Lagrange(group, ids)

	public := group.NewPoint()
	for id, point := range points {
		public = public.Add(lagrange[id].Act(point))
	}
	return public, nil
}
