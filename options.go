package honk

import (
	"crypto/sha256"
	"fmt"
	"hash"
)

type config struct {
	challengeHash hash.Hash
}

// Option configures a proving or verifying session. The prover and the
// verifier must agree on every option affecting challenge derivation.
type Option func(*config) error

// WithChallengeHash sets the hash function backing the Fiat-Shamir
// transcript. Defaults to sha256.
func WithChallengeHash(h hash.Hash) Option {
	return func(c *config) error {
		if h == nil {
			return fmt.Errorf("nil challenge hash")
		}
		c.challengeHash = h
		return nil
	}
}

func newConfig(opts ...Option) (*config, error) {
	c := &config{challengeHash: sha256.New()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	return c, nil
}
