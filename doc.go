// Package honk implements a multilinear zero-knowledge proving system over
// BN254: committed witness columns are proven to satisfy a fixed set of
// polynomial relations through a Fiat-Shamir sumcheck reduction and a single
// batched KZG opening.
//
// The package exposes one proving session per circuit shape: Setup builds the
// proving and verifying keys from the circuit description and a KZG
// structured reference string, Prove turns a witness assignment into a Proof,
// and Verify replays the transcript derivation against the verifying key.
package honk
