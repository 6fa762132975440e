package secrets

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// Base64 marks the secret as base64 encoded. The decoded value is returned.
	Base64 bool
}

// Load returns the resolved secret value from the provided source. When File is
// set it takes precedence over Value. The returned secret is always trimmed. An
// error is returned when neither File nor Value contain a usable secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	if src.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return "", fmt.Errorf("decoding base64 %s: %w", name, err)
		}
		secret = strings.TrimSpace(string(decoded))
		if secret == "" {
			return "", fmt.Errorf("%s decodes to an empty value", name)
		}
	}

	return secret, nil
}

// Configured reports whether the source has either an inline value or a file.
func Configured(src Source) bool {
	return strings.TrimSpace(src.Value) != "" || strings.TrimSpace(src.File) != ""
}
