package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/scholarled/paper-nft-go/internal/log"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/payload"
)

// TokenReader is the part of ledger.Client a Verifier needs.
type TokenReader interface {
	LookupToken(ctx context.Context, owner string, tokenID string) (*ledger.TokenRecord, error)
}

// DefaultConcurrency bounds VerifyMany when no limit is configured.
const DefaultConcurrency = 8

// Verifier compares on-chain token payloads with expected content hashes.
// It holds no mutable state and is safe for parallel use.
type Verifier struct {
	reader      TokenReader
	owner       string
	concurrency int
	logger      zerolog.Logger
}

// NewVerifier creates a Verifier reading tokens held by owner. An empty
// owner lets backends look tokens up by id alone.
func NewVerifier(reader TokenReader, owner string) (*Verifier, error) {
	if reader == nil {
		return nil, fmt.Errorf("token reader is required")
	}
	return &Verifier{
		reader:      reader,
		owner:       strings.TrimSpace(owner),
		concurrency: DefaultConcurrency,
		logger:      log.Verify,
	}, nil
}

// WithConcurrency returns a copy of v that runs at most n lookups at once in
// VerifyMany.
func (v *Verifier) WithConcurrency(n int) *Verifier {
	copied := *v
	if n > 0 {
		copied.concurrency = n
	}
	return &copied
}

// WithLogger returns a copy of v that logs to logger.
func (v *Verifier) WithLogger(logger zerolog.Logger) *Verifier {
	copied := *v
	copied.logger = logger
	return &copied
}

// Verify reads the token and compares its payload hash with expectedHash.
// An empty tokenID yields NotAssociated without touching the ledger. Only
// transport failures are returned as errors.
func (v *Verifier) Verify(ctx context.Context, tokenID string, expectedHash string) (Verdict, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return NotAssociated{}, nil
	}

	record, err := v.reader.LookupToken(ctx, v.owner, tokenID)
	if err != nil {
		if errors.Is(err, ledger.ErrNoSuchToken) {
			return NotAssociated{TokenID: tokenID}, nil
		}
		return nil, fmt.Errorf("failed to look up token %s: %w", tokenID, err)
	}
	if record == nil {
		return NotAssociated{TokenID: tokenID}, nil
	}

	decoded, err := payload.Decode(record.Payload)
	if err != nil {
		var malformed *payload.MalformedError
		if errors.As(err, &malformed) {
			v.logger.Warn().Str("token_id", tokenID).Str("reason", malformed.Reason).Msg("token payload malformed")
			return Malformed{TokenID: tokenID, Reason: malformed.Reason}, nil
		}
		return Malformed{TokenID: tokenID, Reason: err.Error()}, nil
	}

	if !payload.SameHash(expectedHash, decoded.ContentHash) {
		v.logger.Warn().
			Str("token_id", tokenID).
			Str("expected", expectedHash).
			Str("found", decoded.ContentHash).
			Msg("token hash mismatch")
		return Mismatch{TokenID: tokenID, Expected: expectedHash, Found: decoded.ContentHash}, nil
	}

	return Verified{TokenID: tokenID, Record: decoded}, nil
}

// Request is one VerifyMany input.
type Request struct {
	TokenID      string
	ExpectedHash string
}

// VerifyMany verifies several tokens in parallel. Verdicts are returned in
// request order. The first transport error cancels the remaining lookups.
func (v *Verifier) VerifyMany(ctx context.Context, requests []Request) ([]Verdict, error) {
	verdicts := make([]Verdict, len(requests))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(v.concurrency)
	for i, request := range requests {
		group.Go(func() error {
			verdict, err := v.Verify(groupCtx, request.TokenID, request.ExpectedHash)
			if err != nil {
				return err
			}
			verdicts[i] = verdict
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}
