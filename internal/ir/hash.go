package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with existing hashes.
const (
	DomainNodeContent = "treeq/node-content/v1"
	DomainBindings    = "treeq/bindings/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps domain and data from running together.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash identifies a node's type and property set.
// The store compares it before reindexing tokens, so rewriting a node with
// identical content is cheap.
func ContentHash(nodeType string, props []Property) (string, error) {
	obj := make(IRObject, len(props))
	for _, p := range props {
		obj[p.Name] = p.Value
	}
	canonical, err := MarshalCanonical(IRObject{
		"type":       IRString(nodeType),
		"properties": obj,
	})
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return hashWithDomain(DomainNodeContent, canonical), nil
}

// BindingsHash fingerprints a set of bind variable values. Plans prepared
// with equal bindings share a fingerprint.
func BindingsHash(bindings IRObject) (string, error) {
	if bindings == nil {
		bindings = IRObject{}
	}
	canonical, err := MarshalCanonical(bindings)
	if err != nil {
		return "", fmt.Errorf("bindings hash: %w", err)
	}
	return hashWithDomain(DomainBindings, canonical), nil
}
