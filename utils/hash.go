package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// EmptyBodyHash is the SHA256 hash of an empty body
const EmptyBodyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// HashSHA256 returns the hex encoded SHA256 of data.
func HashSHA256(data []byte) string {
	if len(data) == 0 {
		return EmptyBodyHash
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// BuildArchiveStringToSign is the canonical string signed for an archived revision.
// Format: BUCKET\nOBJECT\nCOMMIT_ID\nSHA256(payload)
func BuildArchiveStringToSign(bucketName, objectName string, commitID int64, payloadHash string) string {
	return fmt.Sprintf("%s\n%s\n%d\n%s", bucketName, objectName, commitID, payloadHash)
}

// ComputeHMACSHA256 computes HMAC-SHA256 signature and returns hex-encoded string.
func ComputeHMACSHA256(secretKey, message string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
