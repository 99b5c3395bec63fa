package httpapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"net/http"
	"time"
)

// Algorithm names the HMAC hash function the owning application signs
// callback payloads with, configured alongside its secret (spec.md §6
// "Environment / configuration").
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "sha1"
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmSHA512 Algorithm = "sha512"
)

func (a Algorithm) newHash() (func() hash.Hash, error) {
	switch a {
	case AlgorithmSHA1:
		return sha1.New, nil
	case AlgorithmSHA256, "":
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	}
	return nil, fmt.Errorf("httpapi: unsupported callback algorithm %q", a)
}

// Signer is the module-level singleton (per spec.md §9 "Global module
// state") that signs every callback delivery: immutable once constructed,
// shared by every provider instance, the Go analogue of the original's
// one process-wide Signer(HMAC_SECRET, HMAC_ALGORITHM).
type Signer struct {
	secret    []byte
	newHash   func() hash.Hash
	algorithm Algorithm
}

// NewSigner builds a Signer for the given secret and algorithm ("sha1",
// "sha256", or "sha512"; "" defaults to sha256).
func NewSigner(secret string, algorithm Algorithm) (*Signer, error) {
	newHash, err := algorithm.newHash()
	if err != nil {
		return nil, err
	}
	return &Signer{secret: []byte(secret), newHash: newHash, algorithm: algorithm}, nil
}

// SignedEnvelope is the wire shape delivered to the callback URL:
// {payload: base64(json), signature: hex(hmac(payload))}.
type SignedEnvelope struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Sign base64-encodes body, then HMACs the base64 text (not the raw
// bytes) with the configured algorithm and secret, matching
// send_signed_request's "sign the encoded message, not the plaintext".
func (s *Signer) Sign(body []byte) SignedEnvelope {
	message := base64.StdEncoding.EncodeToString(body)
	mac := hmac.New(s.newHash, s.secret)
	mac.Write([]byte(message))
	return SignedEnvelope{
		Payload:   message,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}

// Verify reports whether envelope's signature matches its payload under
// s's secret, using constant-time comparison.
func (s *Signer) Verify(envelope SignedEnvelope) bool {
	mac := hmac.New(s.newHash, s.secret)
	mac.Write([]byte(envelope.Payload))
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(envelope.Signature))
}

// CallbackAction names the operations the owning application is notified
// of (spec.md §6 "Delivered on create/update/delete/move/copy").
type CallbackAction string

const (
	CallbackCreate CallbackAction = "create"
	CallbackUpdate CallbackAction = "update"
	CallbackDelete CallbackAction = "delete"
	CallbackMove   CallbackAction = "move"
	CallbackCopy   CallbackAction = "copy"
)

// CallbackBody is the JSON payload signed and delivered to the owning
// application's callback_url. Metadata carries the affected entity for
// create/update/delete; Source/Destination carry the two paths for
// move/copy instead.
type CallbackBody struct {
	Action      CallbackAction `json:"action"`
	Metadata    any            `json:"metadata,omitempty"`
	Source      any            `json:"source,omitempty"`
	Destination any            `json:"destination,omitempty"`
	Auth        any            `json:"auth"`
	Provider    string         `json:"provider"`
	Time        float64        `json:"time"`
}

// DeliverCallback signs body and PUTs the signed envelope to url, the
// side channel spec.md §1 treats as an external collaborator: the core
// only ever builds and signs the payload, never owns retry/queueing of
// the delivery itself.
func DeliverCallback(ctx context.Context, client *http.Client, url string, signer *Signer, body CallbackBody) error {
	if body.Time == 0 {
		body.Time = float64(time.Now().Unix())
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	envelope := signer.Sign(raw)
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("httpapi: callback delivery to %s failed with status %d", url, resp.StatusCode)
	}
	return nil
}
