package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// canonicalPayload flattens an entry into the map that gets hashed. Using
// map[string]any end to end means encoding/json sorts every object's keys
// recursively, so the digest is independent of field insertion order.
// Arrays keep their order. HashCurrent itself is never part of the payload.
func canonicalPayload(e *Entry) map[string]any {
	actor := map[string]any{
		"userId": e.Actor.UserID,
		"email":  e.Actor.Email,
		"roles":  sortedRoles(e.Actor.Roles),
	}
	if e.Actor.IPAddress != "" {
		actor["ipAddress"] = e.Actor.IPAddress
	}
	if e.Actor.DeviceID != "" {
		actor["deviceId"] = e.Actor.DeviceID
	}

	resource := map[string]any{
		"type": e.Resource.Type,
		"id":   e.Resource.ID,
	}
	if e.Resource.Name != "" {
		resource["name"] = e.Resource.Name
	}

	payload := map[string]any{
		"id":        e.ID,
		"timestamp": e.Timestamp.UTC().Format(time.RFC3339Nano),
		"action":    e.Action,
		"actor":     actor,
		"resource":  resource,
		"details":   e.Details,
		"outcome":   string(e.Outcome),
		"severity":  string(e.Severity),
		"sequence":  e.Sequence,
	}
	if e.HashPrevious != "" {
		payload["hashPrevious"] = e.HashPrevious
	}
	return payload
}

func sortedRoles(roles []string) []string {
	sorted := slices.Clone(roles)
	slices.Sort(sorted)
	return sorted
}

// computeHash serializes payload canonically and returns the hex-encoded
// HMAC-SHA256 digest keyed with secret. Identical payload and secret always
// produce the identical digest; that determinism is what makes independent
// re-verification of the chain possible.
func computeHash(payload map[string]any, secret string) (string, error) {
	if secret == "" {
		return "", ErrSecretMissing
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
