package estimation

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-engine/internal/domain"
)

// BaseTokens is the routing graph configuration: the chain's native token
// plus tokens designated reliably liquid enough to serve as the intermediate
// hop of a route. The native token is always part of the base set because
// every gas-aware comparison prices through it.
type BaseTokens struct {
	native common.Address
	bases  []common.Address
}

// NewBaseTokens builds the base token set. The configured order is preserved
// (minus duplicates) because enumeration order is the tie break between
// equally ranked routes.
func NewBaseTokens(native common.Address, bases []common.Address) *BaseTokens {
	deduped := make([]common.Address, 0, len(bases)+1)
	seen := map[common.Address]struct{}{native: {}}
	deduped = append(deduped, native)
	for _, base := range bases {
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		deduped = append(deduped, base)
	}
	return &BaseTokens{native: native, bases: deduped}
}

// Native returns the chain's native token.
func (b *BaseTokens) Native() common.Address {
	return b.native
}

// PathCandidates enumerates the routes to consider for a trade: the direct
// path first, then one 2-hop path through each base token distinct from both
// endpoints, in configured order. The order is deterministic and first wins
// ties during ranking.
func (b *BaseTokens) PathCandidates(sell, buy common.Address) [][]common.Address {
	if sell == buy {
		return nil
	}
	candidates := make([][]common.Address, 0, 1+len(b.bases))
	candidates = append(candidates, []common.Address{sell, buy})
	for _, base := range b.bases {
		if base == sell || base == buy {
			continue
		}
		candidates = append(candidates, []common.Address{sell, base, buy})
	}
	return candidates
}

// RelevantPairs lists every token pair the candidate routes for the queried
// pair can touch, including the pairs needed to price both endpoints in the
// native token. The pool snapshot for a query is fetched for exactly this
// set.
func (b *BaseTokens) RelevantPairs(sell, buy common.Address) []domain.TokenPair {
	seen := make(map[domain.TokenPair]struct{})
	pairs := make([]domain.TokenPair, 0, 3*(1+len(b.bases)))

	add := func(paths [][]common.Address) {
		for _, path := range paths {
			for i := 0; i+1 < len(path); i++ {
				pair, ok := domain.NewTokenPair(path[i], path[i+1])
				if !ok {
					continue
				}
				if _, dup := seen[pair]; dup {
					continue
				}
				seen[pair] = struct{}{}
				pairs = append(pairs, pair)
			}
		}
	}

	add(b.PathCandidates(sell, buy))
	add(b.PathCandidates(b.native, sell))
	add(b.PathCandidates(b.native, buy))
	return pairs
}
