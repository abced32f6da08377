// Command attest-lambda is an AWS Lambda entrypoint that builds, signs,
// and archives offchain attestations. Configuration (chain, signing key,
// schema) comes from GEOATTEST_* environment variables on the function;
// media can be inlined base64 or fetched from S3. Each signed envelope is
// stored as JSON in the bucket named by ARCHIVE_BUCKET.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/geoattest/sdk-go/client"
	"github.com/geoattest/sdk-go/config"
	"github.com/geoattest/sdk-go/core/types"
)

// archiveBucketEnv names the bucket signed envelopes are written to.
const archiveBucketEnv = "ARCHIVE_BUCKET"

// MediaRef is one attachment: either an inline base64 payload or an S3
// object reference, never both.
type MediaRef struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Key      string `json:"key,omitempty"`
}

type AttestEvent struct {
	Location       string     `json:"location"`
	LocationFormat string     `json:"location_format,omitempty"`
	TargetFormat   string     `json:"target_format,omitempty"`
	EventTimestamp uint64     `json:"event_timestamp,omitempty"`
	Memo           string     `json:"memo,omitempty"`
	Recipient      string     `json:"recipient,omitempty"`
	Media          []MediaRef `json:"media,omitempty"`
}

type AttestResponse struct {
	UID          string   `json:"uid"`
	Attester     string   `json:"attester"`
	Schema       string   `json:"schema"`
	Time         uint64   `json:"time"`
	LocationType string   `json:"location_type"`
	Location     string   `json:"location"`
	Warnings     []string `json:"warnings,omitempty"`
	ArchivedTo   string   `json:"archived_to"`
	SignatureR   string   `json:"signature_r"`
	SignatureS   string   `json:"signature_s"`
	SignatureV   uint8    `json:"signature_v"`
}

func HandleRequest(ctx context.Context, event AttestEvent) (*AttestResponse, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	c, err := client.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build client: %w", err)
	}

	builder := c.NewAttestation().
		WithLocation(event.Location).
		WithLocationFormat(event.LocationFormat).
		WithTargetFormat(event.TargetFormat).
		WithMemo(event.Memo)
	if event.EventTimestamp != 0 {
		builder = builder.WithEventTime(time.Unix(int64(event.EventTimestamp), 0))
	}
	if event.Recipient != "" {
		builder = builder.WithRecipient(common.HexToAddress(event.Recipient))
	}

	for _, m := range event.Media {
		switch {
		case m.Bucket != "" && m.Key != "":
			data, err := fetchObject(ctx, m.Bucket, m.Key)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch media s3://%s/%s: %w", m.Bucket, m.Key, err)
			}
			builder = builder.WithMedia(m.MimeType, data)
		default:
			builder = builder.WithMediaBase64(m.MimeType, m.Data)
		}
	}

	a, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	att, err := c.SignOffchain(ctx, a)
	if err != nil {
		return nil, err
	}
	archived, err := archiveEnvelope(ctx, att)
	if err != nil {
		return nil, err
	}

	resp := &AttestResponse{
		UID:          att.UID.Hex(),
		Attester:     att.Attester.Hex(),
		Schema:       att.Schema.Hex(),
		Time:         att.Time,
		LocationType: a.Location.LocationType,
		Location:     a.Location.Location,
		ArchivedTo:   archived,
		SignatureR:   att.Signature.R.Hex(),
		SignatureS:   att.Signature.S.Hex(),
		SignatureV:   att.Signature.V,
	}
	for _, w := range a.Location.Warnings {
		if w.Ordinate >= 0 {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s at ordinate %d: %s -> %s", w.Code, w.Ordinate, w.Source, w.Converted))
		} else {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %s", w.Code, w.Detail))
		}
	}
	return resp, nil
}

func fetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := store().GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()
	return io.ReadAll(obj.Body)
}

// archiveEnvelope writes the signed envelope as JSON under a UID-derived
// key and returns its s3:// location.
func archiveEnvelope(ctx context.Context, att *types.OffchainAttestation) (string, error) {
	bucket := os.Getenv(archiveBucketEnv)
	if bucket == "" {
		return "", fmt.Errorf("%s is not set", archiveBucketEnv)
	}
	body, err := json.Marshal(att)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	key := fmt.Sprintf("attestations/%s.json", att.UID.Hex())
	if _, err := store().PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("failed to archive envelope s3://%s/%s: %w", bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

// objectStore is the slice of the S3 API the function uses: media fetch
// plus envelope archive.
type objectStore interface {
	GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

var (
	s3Once   sync.Once
	s3Client objectStore
)

// store returns the S3 client, built on first use and reused for the life
// of the container.
func store() objectStore {
	s3Once.Do(func() {
		if s3Client == nil {
			sess := session.Must(session.NewSession())
			s3Client = s3.New(sess)
		}
	})
	return s3Client
}

func main() {
	lambda.Start(HandleRequest)
}
