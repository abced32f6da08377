package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geoattest/sdk-go/core/types"
	"github.com/geoattest/sdk-go/extensions/media"
	"github.com/geoattest/sdk-go/internal/tracing"
)

// mediaValidationLimit bounds concurrent media validations during Build.
// Validation sniffs magic bytes, so the work is CPU-light; the limit mostly
// keeps peak memory flat when attachments are large.
const mediaValidationLimit = 4

type mediaInput struct {
	mime string
	// Exactly one of data and encoded is set.
	data    []byte
	encoded string
}

// AttestationBuilder assembles an UnsignedAttestation step by step. Setters
// only record intent; all validation, detection, and conversion happen in
// Build, so errors surface once with full context.
//
// Builders are single-use and not safe for concurrent mutation.
type AttestationBuilder struct {
	client *Client

	location       any
	locationFormat string
	targetFormat   string
	eventTime      time.Time
	expiration     time.Time
	memo           string
	media          []mediaInput
	recipient      common.Address
	revocable      bool
	refUID         common.Hash
	srs            string
}

// NewAttestation starts a builder. Attestations are revocable unless
// WithRevocable(false) says otherwise.
func (c *Client) NewAttestation() *AttestationBuilder {
	return &AttestationBuilder{
		client:    c,
		revocable: true,
		srs:       c.srs,
	}
}

// WithLocation sets the location input in any registered format. The format
// is auto-detected unless WithLocationFormat pins it.
func (b *AttestationBuilder) WithLocation(raw any) *AttestationBuilder {
	b.location = raw
	return b
}

// WithLocationFormat pins the input format instead of detecting it.
func (b *AttestationBuilder) WithLocationFormat(format string) *AttestationBuilder {
	b.locationFormat = format
	return b
}

// WithTargetFormat converts the location into format before attesting.
// Without it the location is canonicalized in its input format.
func (b *AttestationBuilder) WithTargetFormat(format string) *AttestationBuilder {
	b.targetFormat = format
	return b
}

// WithEventTime sets when the attested event happened. Defaults to Build
// time.
func (b *AttestationBuilder) WithEventTime(t time.Time) *AttestationBuilder {
	b.eventTime = t
	return b
}

// WithExpiration sets when the attestation expires. Unset means never.
func (b *AttestationBuilder) WithExpiration(t time.Time) *AttestationBuilder {
	b.expiration = t
	return b
}

// WithMemo attaches a free-form note.
func (b *AttestationBuilder) WithMemo(memo string) *AttestationBuilder {
	b.memo = memo
	return b
}

// WithMedia attaches raw media bytes declared as mime. The payload is
// validated against its declared type and base64-encoded during Build.
func (b *AttestationBuilder) WithMedia(mime string, data []byte) *AttestationBuilder {
	b.media = append(b.media, mediaInput{mime: mime, data: data})
	return b
}

// WithMediaBase64 attaches an already-encoded media payload, with or
// without a data URI prefix. It is decoded for validation during Build.
func (b *AttestationBuilder) WithMediaBase64(mime, encoded string) *AttestationBuilder {
	b.media = append(b.media, mediaInput{mime: mime, encoded: encoded})
	return b
}

// WithRecipient sets the EAS recipient address.
func (b *AttestationBuilder) WithRecipient(addr common.Address) *AttestationBuilder {
	b.recipient = addr
	return b
}

// WithRevocable controls whether the attestation can later be revoked.
func (b *AttestationBuilder) WithRevocable(revocable bool) *AttestationBuilder {
	b.revocable = revocable
	return b
}

// WithRefUID references an earlier attestation.
func (b *AttestationBuilder) WithRefUID(uid common.Hash) *AttestationBuilder {
	b.refUID = uid
	return b
}

// WithSRS overrides the client's spatial reference system for this
// attestation only.
func (b *AttestationBuilder) WithSRS(srs string) *AttestationBuilder {
	b.srs = srs
	return b
}

// Build validates and assembles the attestation payload. The location is
// detected (or taken as pinned), converted, and canonicalized; media
// attachments are validated concurrently against their declared MIME
// types. Conversion warnings are carried on the payload, never turned into
// errors.
func (b *AttestationBuilder) Build(ctx context.Context) (*types.UnsignedAttestation, error) {
	ctx, end := tracing.TraceOp(ctx, tracing.OpBuild)
	a, err := b.build(ctx)
	end(err)
	return a, err
}

func (b *AttestationBuilder) build(ctx context.Context) (*types.UnsignedAttestation, error) {
	if err := b.client.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	if b.location == nil {
		return nil, types.NewError(types.KindValidation, "build_attestation", "attestation has no location")
	}

	payload, err := b.client.Convert(ctx, b.location, b.locationFormat, b.targetFormat)
	if err != nil {
		return nil, err
	}

	eventTime := b.eventTime
	if eventTime.IsZero() {
		eventTime = time.Now()
	}
	if !b.expiration.IsZero() && !b.expiration.After(eventTime) {
		return nil, types.NewError(types.KindValidation, "build_attestation",
			fmt.Sprintf("expiration %s does not follow event time %s",
				b.expiration.UTC().Format(time.RFC3339), eventTime.UTC().Format(time.RFC3339)))
	}

	attachments, err := b.validateMedia(ctx)
	if err != nil {
		return nil, err
	}

	a := &types.UnsignedAttestation{
		EventTimestamp: uint64(eventTime.Unix()),
		SRS:            b.srs,
		Location:       *payload,
		Media:          attachments,
		Memo:           b.memo,
		Recipient:      b.recipient,
		Revocable:      b.revocable,
		RefUID:         b.refUID,
	}
	if !b.expiration.IsZero() {
		a.ExpirationTime = uint64(b.expiration.Unix())
	}

	b.client.metrics.RecordAttestationBuilt(ctx, payload.LocationType, len(attachments))
	b.client.logger.Debug("attestation built",
		zap.String("location_type", payload.LocationType),
		zap.Int("warnings", len(payload.Warnings)),
		zap.Strings("media_types", lo.Map(attachments, func(m types.MediaAttachment, _ int) string {
			return m.MimeType
		})))
	return a, nil
}

// validateMedia checks every attachment against its declared MIME type and
// returns them base64-encoded, preserving input order.
func (b *AttestationBuilder) validateMedia(ctx context.Context) ([]types.MediaAttachment, error) {
	if len(b.media) == 0 {
		return nil, nil
	}

	attachments := make([]types.MediaAttachment, len(b.media))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mediaValidationLimit)
	for i, in := range b.media {
		g.Go(func() error {
			raw := in.data
			if in.encoded != "" {
				decoded, err := media.DecodeData(in.encoded)
				if err != nil {
					return err
				}
				raw = decoded
			}
			if err := b.client.ValidateMedia(gctx, in.mime, raw); err != nil {
				return err
			}
			attachments[i] = types.MediaAttachment{
				MimeType: in.mime,
				Data:     media.EncodeData(raw),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return attachments, nil
}
